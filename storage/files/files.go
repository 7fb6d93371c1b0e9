// Package files stores uploaded files on local disk or on Aliyun OSS.
package files

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
)

// Store saves file contents under a key and returns the path records refer to them by.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// New returns the store selected by conf.Files.Driver.
func New(conf *core.Config) (Store, error) {
	switch conf.Files.Driver {
	case "", "local":
		return NewLocal(conf.Files.Dir, "/uploads")
	case "oss":
		return NewOSS(conf.Files)
	default:
		return nil, errors.Errorf("unknown files driver %q", conf.Files.Driver)
	}
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// Key builds a unique object key for an upload, like "lessons/20240102-<uuid>-notes.pdf".
func Key(folder, filename string) string {
	base := unsafeChars.ReplaceAllString(filepath.Base(filename), "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return path.Join(folder, fmt.Sprintf("%s-%s-%s", time.Now().UTC().Format("20060102"), uuid.NewString(), base))
}
