package model

import "time"

// SenderMaxLen bounds Message.Sender.
const SenderMaxLen = 15

// Message is one append-only chat line of a project room.
type Message struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	MessageProjectID uint   `gorm:"not null;index:idx_message_project_moment,priority:1" json:"message_project"`
	Sender           string `gorm:"type:varchar(15);not null" json:"sender"`
	Content          string `gorm:"type:text;not null" json:"content"`

	Moment time.Time `gorm:"autoCreateTime;not null;index:idx_message_project_moment,priority:2,sort:desc" json:"moment"`
}

func (Message) TableName() string { return "messages" }
