package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/netx"
	"github.com/dmitrijs2005/tutorsync/internal/rtdb"
)

// Registry hands out presigned URLs for deployment packages.
type Registry interface {
	PresignPackageUpload(ctx context.Context, version string) (*rtdb.Package, error)
	MarkPackageUploaded(ctx context.Context, id string) error
	LatestPackage(ctx context.Context) (*rtdb.Package, error)
}

var (
	uploadPackage   = netx.UploadToPresignedURL
	downloadPackage = netx.DownloadFromPresignedURL
)

// Publish exports local, uploads the resulting package and marks it
// completed so devices can pull it.
func Publish(ctx context.Context, local localstore.Store, reg Registry, now time.Time) (*rtdb.Package, error) {
	snap, err := Export(ctx, local, now)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WritePackage(&buf, snap); err != nil {
		return nil, fmt.Errorf("build package: %w", err)
	}

	p, err := reg.PresignPackageUpload(ctx, snap.Version)
	if err != nil {
		return nil, fmt.Errorf("register package: %w", err)
	}

	if err := uploadPackage(ctx, p.URL, buf.Bytes()); err != nil {
		return nil, err
	}

	if err := reg.MarkPackageUploaded(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("mark uploaded: %w", err)
	}
	return p, nil
}

// PullLatest downloads the newest published package and restores it.
func PullLatest(ctx context.Context, local localstore.Store, reg Registry) (Result, error) {
	p, err := reg.LatestPackage(ctx)
	if err != nil {
		return Result{}, err
	}

	b, err := downloadPackage(ctx, p.URL)
	if err != nil {
		return Result{}, err
	}

	snap, err := ReadPackage(b)
	if err != nil {
		return Result{}, err
	}
	return Restore(ctx, local, snap)
}
