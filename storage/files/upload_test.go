package files

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
)

func pngBytes(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newUploader(t *testing.T, maxBytes int64) (*Uploader, *Local) {
	local, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	conf := core.NewTestConfig()
	conf.Files.MaxUploadBytes = maxBytes
	return NewUploader(local, conf), local
}

func TestUploader_ProfilePicture(t *testing.T) {
	up, local := newUploader(t, 1<<20)

	ref, err := up.Upload(context.Background(), ProfilePicture, "me.png", bytes.NewReader(pngBytes(t, 400, 300)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/profiles/"))
	assert.True(t, strings.HasSuffix(ref, "-me.jpg"))

	img, err := imaging.Open(filepath.Join(local.Dir(), strings.TrimPrefix(ref, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())

	require.NoError(t, local.Delete(context.Background(), ref))
	_, err = os.Stat(filepath.Join(local.Dir(), strings.TrimPrefix(ref, "/uploads/")))
	assert.True(t, os.IsNotExist(err))
}

func TestUploader_Rejects(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n")

	tests := []struct {
		name     string
		kind     Kind
		filename string
		content  []byte
		wantMsg  string
	}{
		{name: "extension", kind: LessonPDF, filename: "notes.exe", content: pdf, wantMsg: "unsupported file type"},
		{name: "empty", kind: LessonPDF, filename: "notes.pdf", content: nil, wantMsg: "file is empty"},
		{name: "too large", kind: Attachment, filename: "big.txt", content: bytes.Repeat([]byte("a"), 2048), wantMsg: "file is too large"},
		{name: "fake pdf", kind: LessonPDF, filename: "notes.pdf", content: []byte("just text"), wantMsg: "does not match"},
		{name: "broken image", kind: ProfilePicture, filename: "me.png", content: []byte("not an image"), wantMsg: "not a valid image"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			up, _ := newUploader(t, 1024)
			_, err := up.Upload(context.Background(), tc.kind, tc.filename, bytes.NewReader(tc.content))
			require.Error(t, err)
			assert.True(t, core.IsValidation(err))
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestUploader_PDF(t *testing.T) {
	up, _ := newUploader(t, 1024)
	ref, err := up.Upload(context.Background(), LessonPDF, "Week 1 notes.pdf", strings.NewReader("%PDF-1.4\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/lessons/"))
	assert.True(t, strings.HasSuffix(ref, "-Week_1_notes.pdf"))
}

func TestKey(t *testing.T) {
	key := Key("attachments", "../../etc/pass wd")
	assert.True(t, strings.HasPrefix(key, "attachments/"))
	assert.True(t, strings.HasSuffix(key, "-pass_wd"))
	assert.NotContains(t, key, "..")
}

func TestLocal_DeleteRejectsForeignPaths(t *testing.T) {
	local, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	assert.Error(t, local.Delete(context.Background(), "https://elsewhere/x.png"))
	assert.Error(t, local.Delete(context.Background(), "/uploads/../secret"))
}
