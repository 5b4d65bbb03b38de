// Package notify relays completed uploads to external systems. Delivery is
// best effort: outcomes are logged and counted, never returned to the
// upload caller.
package notify

import (
	"context"
	"time"
)

// Payload describes one completed upload.
type Payload struct {
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

// Outcome is the result of one delivery attempt. A failed outcome is a
// value for logging, not an error to propagate.
type Outcome struct {
	Delivered  bool
	StatusCode int
	Reason     string
}

func Delivered(statusCode int) Outcome {
	return Outcome{Delivered: true, StatusCode: statusCode}
}

func Failed(statusCode int, reason string) Outcome {
	return Outcome{StatusCode: statusCode, Reason: reason}
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, p Payload) Outcome
}
