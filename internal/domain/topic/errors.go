package topic

import "errors"

var (
	ErrTopicNotFound     = errors.New("topic not found")
	ErrTopicNameRequired = errors.New("topic name is required")
	ErrTopicExists       = errors.New("topic already exists")
)
