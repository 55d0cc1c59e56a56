package artifacts

import (
	"context"
	"os"
	"path/filepath"

	perr "toxlens/internal/platform/errors"
)

// Local writes artifacts into a directory, replacing files of the same name
type Local struct {
	dir string
}

// NewLocal creates dir when missing
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "create export dir %s", dir)
	}
	return &Local{dir: dir}, nil
}

// Put writes through a temp file and renames so readers never see a partial file
func (l *Local) Put(ctx context.Context, name, _ string, body []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "export cancelled")
	}
	tmp, err := os.CreateTemp(l.dir, "."+name+".*")
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "create temp artifact")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "write artifact %s", name)
	}
	if err := tmp.Close(); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "close artifact %s", name)
	}
	dst := filepath.Join(l.dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "place artifact %s", name)
	}
	return dst, nil
}
