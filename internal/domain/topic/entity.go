package topic

import "time"

// DefaultName is the topic created on first start when none exist.
const DefaultName = "General"

// Topic is a user-defined category uploads may optionally belong to.
type Topic struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Topic) TableName() string { return "topics" }
