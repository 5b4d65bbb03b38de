package upload

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mediadrop/internal/pkg/response"
)

const (
	// formOverhead bounds the non-file parts and multipart framing.
	formOverhead = 1 << 20
	maxFieldSize = 64 * 1024
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Image handles POST /api/upload/image
func (h *Handler) Image(c *gin.Context) { h.upload(c, Image) }

// Video handles POST /api/upload/video
func (h *Handler) Video(c *gin.Context) { h.upload(c, Video) }

// upload reads the multipart body as a stream so size limits apply while
// the file is still arriving.
func (h *Handler) upload(c *gin.Context, kind Kind) {
	ctx := c.Request.Context()

	if c.Request.ContentLength > kind.MaxSize+formOverhead {
		h.fail(c, kind, newError(ErrFileTooLarge, kind.TooLargeMessage(), errTooLarge))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, kind.MaxSize+formOverhead)

	mr, err := c.Request.MultipartReader()
	if err != nil {
		h.fail(c, kind, newError(ErrMissingFile, kind.MissingMessage, err))
		return
	}

	var (
		stored      *StoredFile
		description string
		topicRaw    string
	)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.service.Discard(stored)
			h.fail(c, kind, readError(kind, err))
			return
		}

		switch name := part.FormName(); {
		case name == kind.FormField && part.FileName() != "" && stored == nil:
			stored, err = h.service.Store(ctx, kind, FileInput{
				Name:     part.FileName(),
				MimeType: part.Header.Get("Content-Type"),
				Reader:   part,
			})
			if err != nil {
				_ = part.Close()
				h.fail(c, kind, err)
				return
			}
		case name == "description":
			description, err = readField(part)
		case name == "topicId":
			topicRaw, err = readField(part)
		}
		_ = part.Close()

		if err != nil {
			h.service.Discard(stored)
			h.fail(c, kind, readError(kind, err))
			return
		}
	}

	if stored == nil {
		h.fail(c, kind, newError(ErrMissingFile, kind.MissingMessage, nil))
		return
	}

	topicID, err := ParseTopicID(topicRaw)
	if err != nil {
		h.service.Discard(stored)
		h.fail(c, kind, err)
		return
	}

	rec, err := h.service.Commit(ctx, kind, stored, Meta{
		Description: strings.TrimSpace(description),
		TopicID:     topicID,
	})
	if err != nil {
		h.fail(c, kind, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": kind.SuccessMessage,
		"file":    rec,
	})
}

func (h *Handler) fail(c *gin.Context, kind Kind, err error) {
	var uerr *Error
	if !errors.As(err, &uerr) {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Error interno del servidor")
		return
	}

	if IsClientError(err) {
		response.Error(c, http.StatusBadRequest, uerr.Message)
		return
	}
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, uerr.Message)
}

// ParseTopicID accepts an empty value (no topic) or a positive integer.
func ParseTopicID(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || raw == "undefined" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return nil, newError(ErrInvalidFile, "topicId inválido", err)
	}
	id := uint(n)
	return &id, nil
}

func readField(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxFieldSize))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readError(kind Kind, err error) error {
	if isTooLarge(err) {
		return newError(ErrFileTooLarge, kind.TooLargeMessage(), err)
	}
	return newError(ErrStorage, "No se pudo recibir el archivo", err)
}
