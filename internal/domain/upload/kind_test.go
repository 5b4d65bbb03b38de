package upload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_Validate(t *testing.T) {
	cases := []struct {
		name     string
		kind     Kind
		filename string
		mimeType string
		ok       bool
	}{
		{name: "png image", kind: Image, filename: "photo.png", mimeType: "image/png", ok: true},
		{name: "upper case extension", kind: Image, filename: "PHOTO.JPG", mimeType: "image/jpeg", ok: true},
		{name: "image/jpg alias", kind: Image, filename: "a.jpeg", mimeType: "image/jpg", ok: true},
		{name: "mime with params", kind: Image, filename: "a.webp", mimeType: "Image/WebP; charset=binary", ok: true},
		{name: "extension ok mime not", kind: Image, filename: "photo.png", mimeType: "application/pdf"},
		{name: "mime ok extension not", kind: Image, filename: "photo.pdf", mimeType: "image/png"},
		{name: "no extension", kind: Image, filename: "photo", mimeType: "image/png"},
		{name: "video in image slot", kind: Image, filename: "clip.mp4", mimeType: "video/mp4"},
		{name: "quicktime video", kind: Video, filename: "clip.MOV", mimeType: "video/quicktime", ok: true},
		{name: "matroska video", kind: Video, filename: "clip.mkv", mimeType: "video/x-matroska", ok: true},
		{name: "video ext with image mime", kind: Video, filename: "clip.webm", mimeType: "image/webp"},
		{name: "video mime with bad ext", kind: Video, filename: "clip.exe", mimeType: "video/mp4"},
		{name: "substring mime is not enough", kind: Video, filename: "clip.mp4", mimeType: "application/mp4"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.kind.Validate(tc.filename, tc.mimeType)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidFile)

			var uerr *Error
			if assert.True(t, errors.As(err, &uerr)) {
				assert.Equal(t, tc.kind.InvalidMessage(), uerr.Message)
			}
		})
	}
}

func TestKind_Messages(t *testing.T) {
	assert.Equal(t, "Solo se permiten imágenes (JPEG, JPG, PNG, GIF, WEBP)", Image.InvalidMessage())
	assert.Equal(t, "Solo se permiten videos (MP4, AVI, MOV, WMV, FLV, WEBM, MKV)", Video.InvalidMessage())
	assert.Equal(t, "El archivo excede el tamaño máximo permitido (10 MiB)", Image.TooLargeMessage())
	assert.Equal(t, "El archivo excede el tamaño máximo permitido (100 MiB)", Video.TooLargeMessage())
}

func TestKind_Limits(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), Image.MaxSize)
	assert.Equal(t, int64(100*1024*1024), Video.MaxSize)
	assert.Equal(t, []Kind{Image, Video}, Kinds())
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "png", Extension("photo.PNG"))
	assert.Equal(t, "gz", Extension("archive.tar.gz"))
	assert.Equal(t, "", Extension("README"))
}

func TestError_Classification(t *testing.T) {
	cause := errors.New("disk full")
	err := newError(ErrStorage, "No se pudo guardar el archivo", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsClientError(err))
	assert.Equal(t, "storage error: disk full", err.Error())

	assert.True(t, IsClientError(newError(ErrFileTooLarge, "x", nil)))
	assert.Equal(t, "too_large", resultLabel(newError(ErrFileTooLarge, "x", nil)))
	assert.Equal(t, "ok", resultLabel(nil))
}

func TestLookupAndKindFor(t *testing.T) {
	k, ok := Lookup("VIDEO")
	require.True(t, ok)
	assert.Equal(t, Video.Name, k.Name)

	_, ok = Lookup("audio")
	assert.False(t, ok)

	k, ok = KindFor("holiday.JPG")
	require.True(t, ok)
	assert.Equal(t, Image.Name, k.Name)

	k, ok = KindFor("clip.mkv")
	require.True(t, ok)
	assert.Equal(t, Video.Name, k.Name)

	for _, name := range []string{"notes.txt", "README", ""} {
		_, ok = KindFor(name)
		assert.False(t, ok, name)
	}
}
