package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/tutorsync/internal/client/snapshot"
	"github.com/dmitrijs2005/tutorsync/internal/filex"
)

var ErrOffline = errors.New("realtime store not connected")

// Export writes the local store as a deployment package (.zip) or a bare
// JSON snapshot.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	path := args[0]

	snap, err := snapshot.Export(ctx, a.local, a.now())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		err = snapshot.WritePackage(&buf, snap)
	} else {
		var b []byte
		b, err = snap.MarshalJSON()
		buf.Write(b)
	}
	if err != nil {
		return err
	}

	if err := filex.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "EXPORT", path+" version "+snap.Version)
	a.printf("Exported %d keys, version %s, to %s\n", len(snap.Data), snap.Version, path)
	return nil
}

// Deploy publishes the local store as the newest package.
func (a *App) Deploy(ctx context.Context, _ []string) error {
	if a.registry == nil {
		return ErrOffline
	}
	p, err := snapshot.Publish(ctx, a.local, a.registry, a.now())
	if err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "DEPLOY", "version "+p.Version)
	a.printf("Published version %s (%s)\n", p.Version, p.ID)
	return nil
}

// Pull restores the newest published package when it is newer than the
// local data.
func (a *App) Pull(ctx context.Context, _ []string) error {
	if a.registry == nil {
		return ErrOffline
	}
	res, err := snapshot.PullLatest(ctx, a.local, a.registry)
	if err != nil {
		return err
	}
	if !res.Applied {
		a.printf("Already up to date (version %s)\n", res.Previous)
		return nil
	}

	u, err := a.accounts.CurrentUser(ctx)
	if err == nil {
		a.setUser(u)
	}
	a.printf("Updated %s -> %s\n", res.Previous, res.Version)
	return nil
}
