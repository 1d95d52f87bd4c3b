package typeface

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
)

// woff2Signature is the magic number every WOFF2 file starts with.
var woff2Signature = []byte("wOF2")

// FSLoader loads faces from a filesystem, e.g. os.DirFS(cfg.Fonts.LocalDir).
// A face counts as loaded when its file exists and carries the WOFF2 signature.
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader creates a loader over fsys. A nil fsys reports ErrUnsupported.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// LoadFace implements FaceLoader.
func (l *FSLoader) LoadFace(ctx context.Context, face Face) error {
	if l.fsys == nil {
		return ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := l.fsys.Open(face.File)
	if err != nil {
		return fmt.Errorf("open face: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(woff2Signature))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("read face header: %w", err)
	}
	if !bytes.Equal(header, woff2Signature) {
		return fmt.Errorf("%s: not a woff2 file", face.File)
	}
	return nil
}

// FS exposes the underlying filesystem for serving face files.
func (l *FSLoader) FS() fs.FS {
	return l.fsys
}
