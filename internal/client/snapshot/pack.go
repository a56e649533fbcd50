package snapshot

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/klauspost/compress/zip"
)

// snapshotEntry is where the snapshot lives inside a deployment package.
const snapshotEntry = "src/initialData.json"

//go:embed scaffold
var scaffold embed.FS

// WritePackage writes a deployable archive: the app scaffold, a README
// naming the version and the snapshot itself.
func WritePackage(w io.Writer, snap *Snapshot) error {
	zw := zip.NewWriter(w)

	err := fs.WalkDir(scaffold, "scaffold", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := scaffold.ReadFile(path)
		if err != nil {
			return err
		}
		return addFile(zw, path[len("scaffold/"):], b)
	})
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("write scaffold: %w", err)
	}

	readme := fmt.Sprintf("# Tutorsync\nDeployed Version: %s\n", snap.Version)
	if err := addFile(zw, "README.md", []byte(readme)); err != nil {
		_ = zw.Close()
		return err
	}

	data, err := snap.MarshalJSON()
	if err != nil {
		_ = zw.Close()
		return err
	}
	if err := addFile(zw, snapshotEntry, data); err != nil {
		_ = zw.Close()
		return err
	}

	return zw.Close()
}

func addFile(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	_, err = f.Write(data)
	return err
}

// ReadPackage extracts the snapshot from a deployment package.
func ReadPackage(b []byte) (*Snapshot, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != snapshotEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
		return Parse(data)
	}
	return nil, ErrNoSnapshot
}
