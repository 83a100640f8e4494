package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Local writes files under BaseDir and serves them from URLPrefix.
type Local struct {
	BaseDir   string
	URLPrefix string
}

func NewLocal(baseDir, urlPrefix string) *Local {
	return &Local{BaseDir: baseDir, URLPrefix: urlPrefix}
}

func (l *Local) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	if err := os.MkdirAll(l.BaseDir, 0o755); err != nil {
		return PutResult{}, errors.Wrap(err, "failed to create upload directory")
	}

	key := uuid.NewString() + safeExt(in.Filename)
	f, err := os.OpenFile(filepath.Join(l.BaseDir, key), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return PutResult{}, errors.Wrap(err, "failed to create upload file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return PutResult{}, errors.Wrap(err, "failed to write upload file")
	}

	return PutResult{Key: key, URL: strings.TrimRight(l.URLPrefix, "/") + "/" + key}, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(l.BaseDir, filepath.Base(key)))
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }
