package upload

import (
	"io"
	"time"

	"mediadrop/internal/domain/topic"
	"mediadrop/internal/notify"
)

// Media is the stored metadata of one uploaded file. Images and videos
// share the shape and live in separate tables.
type Media struct {
	ID           uint         `gorm:"column:id;primaryKey" json:"id"`
	Filename     string       `gorm:"column:filename;not null" json:"filename"`
	OriginalName string       `gorm:"column:original_name;not null" json:"originalName"`
	Description  string       `gorm:"column:description;type:text" json:"description"`
	FilePath     string       `gorm:"column:file_path" json:"filePath"`
	Size         int64        `gorm:"column:size" json:"size"`
	Mimetype     string       `gorm:"column:mimetype" json:"mimetype"`
	TopicID      *uint        `gorm:"column:topic_id" json:"topicId"`
	Topic        *topic.Topic `gorm:"foreignKey:TopicID;-:migration" json:"topic,omitempty"`
	CreatedAt    time.Time    `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"column:updated_at" json:"updatedAt"`
}

// FileInput is a file as received from the client.
type FileInput struct {
	Name     string
	MimeType string
	Reader   io.Reader
}

// Meta holds the optional attributes sent alongside the file.
type Meta struct {
	Description string
	TopicID     *uint
}

// StoredFile is a file fully written to storage but not yet recorded.
type StoredFile struct {
	Kind         Kind
	Filename     string
	OriginalName string
	Path         string
	Size         int64
	MimeType     string
	StoredAt     time.Time
}

// Record is returned to the client after a successful upload and is the
// shape of the outbound notification.
type Record struct {
	ID           uint      `json:"id"`
	Type         string    `json:"type"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Description  string    `json:"description"`
	Size         int64     `json:"size"`
	Mimetype     string    `json:"mimetype"`
	TopicID      *uint     `json:"topicId"`
	Path         string    `json:"path"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

func newRecord(kind Kind, m *Media) *Record {
	return &Record{
		ID:           m.ID,
		Type:         kind.Name,
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		Description:  m.Description,
		Size:         m.Size,
		Mimetype:     m.Mimetype,
		TopicID:      m.TopicID,
		Path:         m.FilePath,
		UploadedAt:   m.CreatedAt,
	}
}

func (r *Record) Payload() notify.Payload {
	return notify.Payload{
		ID:           r.ID,
		Type:         r.Type,
		Filename:     r.Filename,
		OriginalName: r.OriginalName,
		Description:  r.Description,
		Size:         r.Size,
		Mimetype:     r.Mimetype,
		TopicID:      r.TopicID,
		Path:         r.Path,
		UploadedAt:   r.UploadedAt,
	}
}
