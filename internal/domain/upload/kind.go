package upload

import (
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

// Kind describes everything that differs between upload kinds. Adding a
// kind means adding a descriptor.
type Kind struct {
	Name       string
	Table      string
	Directory  string
	FormField  string
	Label      string
	Extensions []string
	MimeTypes  []string
	MaxSize    int64

	MissingMessage string
	SuccessMessage string
}

var (
	Image = Kind{
		Name:           "image",
		Table:          "images",
		Directory:      "images",
		FormField:      "image",
		Label:          "imágenes",
		Extensions:     []string{"jpeg", "jpg", "png", "gif", "webp"},
		MimeTypes:      []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"},
		MaxSize:        10 << 20,
		MissingMessage: "No se ha subido ninguna imagen",
		SuccessMessage: "Imagen subida exitosamente",
	}

	Video = Kind{
		Name:           "video",
		Table:          "videos",
		Directory:      "videos",
		FormField:      "video",
		Label:          "videos",
		Extensions:     []string{"mp4", "avi", "mov", "wmv", "flv", "webm", "mkv"},
		MimeTypes:      []string{"video/mp4", "video/avi", "video/quicktime", "video/x-ms-wmv", "video/x-flv", "video/webm", "video/x-matroska"},
		MaxSize:        100 << 20,
		MissingMessage: "No se ha subido ningún video",
		SuccessMessage: "Video subido exitosamente",
	}
)

// Kinds lists the built-in kinds in display order.
func Kinds() []Kind {
	return []Kind{Image, Video}
}

// Lookup returns the kind called name.
func Lookup(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if strings.EqualFold(k.Name, name) {
			return k, true
		}
	}
	return Kind{}, false
}

// KindFor picks the kind whose extension list contains the extension of
// filename.
func KindFor(filename string) (Kind, bool) {
	ext := Extension(filename)
	for _, k := range Kinds() {
		if ext != "" && slices.Contains(k.Extensions, ext) {
			return k, true
		}
	}
	return Kind{}, false
}

// Validate checks the declared MIME type and the extension of the original
// name against the allow-lists. Both must match.
func (k Kind) Validate(originalName, mimeType string) error {
	ext := Extension(originalName)
	if ext == "" || !slices.Contains(k.Extensions, ext) {
		return newError(ErrInvalidFile, k.InvalidMessage(), fmt.Errorf("extension %q not allowed for %s", ext, k.Name))
	}

	mt := NormalizeMimeType(mimeType)
	if !slices.Contains(k.MimeTypes, mt) {
		return newError(ErrInvalidFile, k.InvalidMessage(), fmt.Errorf("mime type %q not allowed for %s", mt, k.Name))
	}
	return nil
}

func (k Kind) InvalidMessage() string {
	return fmt.Sprintf("Solo se permiten %s (%s)", k.Label, strings.ToUpper(strings.Join(k.Extensions, ", ")))
}

func (k Kind) TooLargeMessage() string {
	return fmt.Sprintf("El archivo excede el tamaño máximo permitido (%s)", humanize.IBytes(uint64(k.MaxSize)))
}

// Extension returns the lowercased extension of name without the dot.
func Extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// NormalizeMimeType lowercases the media type and drops parameters.
func NormalizeMimeType(v string) string {
	v = strings.TrimSpace(v)
	if mt, _, err := mime.ParseMediaType(v); err == nil {
		return mt
	}
	return strings.ToLower(v)
}
