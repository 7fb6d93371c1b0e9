package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
)

// Kind describes what an upload slot accepts.
type Kind struct {
	Folder string
	Exts   []string
	// Thumbnail > 0 re-encodes images as a square JPEG of this size.
	Thumbnail int
	// MIME, when set, must match the sniffed content type.
	MIME string
}

var (
	ProfilePicture = Kind{Folder: "profiles", Exts: []string{".jpg", ".jpeg", ".png", ".gif"}, Thumbnail: 256}
	LessonPDF      = Kind{Folder: "lessons", Exts: []string{".pdf"}, MIME: "application/pdf"}
	Attachment     = Kind{
		Folder: "attachments",
		Exts:   []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx", ".txt", ".zip", ".png", ".jpg", ".jpeg"},
	}
)

func (k Kind) accepts(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range k.Exts {
		if e == ext {
			return true
		}
	}
	return false
}

func invalidFile(msg string) error {
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "file", Error: msg})
}

type Uploader struct {
	store    Store
	maxBytes int64
}

func NewUploader(store Store, conf *core.Config) *Uploader {
	return &Uploader{store: store, maxBytes: conf.Files.MaxUploadBytes}
}

// Upload checks the file against kind, stores it and returns its path.
func (u *Uploader) Upload(ctx context.Context, kind Kind, filename string, r io.Reader) (string, error) {
	if !kind.accepts(filename) {
		return "", invalidFile(fmt.Sprintf("unsupported file type, allowed: %s", strings.Join(kind.Exts, ", ")))
	}

	var buf bytes.Buffer
	limit := u.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return "", errors.Wrap(err, "reading upload")
	}
	switch {
	case n == 0:
		return "", invalidFile("file is empty")
	case n > limit:
		return "", invalidFile(fmt.Sprintf("file is too large (max %d KB)", limit>>10))
	}

	contentType := http.DetectContentType(buf.Bytes())
	if kind.MIME != "" && contentType != kind.MIME {
		return "", invalidFile("file content does not match its type")
	}

	if kind.Thumbnail > 0 {
		thumb, err := Thumbnail(bytes.NewReader(buf.Bytes()), kind.Thumbnail)
		if err != nil {
			return "", invalidFile("file is not a valid image")
		}
		buf = *thumb
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
		contentType = "image/jpeg"
	}

	ref, err := u.store.Save(ctx, Key(kind.Folder, filename), &buf, contentType)
	if err != nil {
		return "", errors.Wrap(err, "saving upload")
	}
	return ref, nil
}

// Discard deletes a previously uploaded file. Empty refs are ignored.
func (u *Uploader) Discard(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	return u.store.Delete(ctx, ref)
}

// Thumbnail crops an image to a size x size square, encoded as JPEG.
func Thumbnail(r io.Reader, size int) (*bytes.Buffer, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}
	thumb := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
	var out bytes.Buffer
	if err := imaging.Encode(&out, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "encoding thumbnail")
	}
	return &out, nil
}
