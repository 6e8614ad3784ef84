package model

import "time"

type NotificationType string

const (
	NotificationAssignment NotificationType = "ASG"
	NotificationChat       NotificationType = "CHT"
	NotificationDeadline   NotificationType = "DLN"
)

func (n NotificationType) Valid() bool {
	return n == NotificationAssignment || n == NotificationChat || n == NotificationDeadline
}

type Notification struct {
	ID                     uint             `gorm:"primaryKey" json:"id"`
	NotificationProjectID  uint             `gorm:"not null;index" json:"notification_project"`
	NotificationReceiverID uint             `gorm:"not null;index" json:"notification_receiver"`
	Read                   bool             `gorm:"not null;default:false" json:"read"`
	NotificationType       NotificationType `gorm:"type:varchar(3);not null;default:'ASG';check:notification_type IN ('ASG','CHT','DLN')" json:"notification_type"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
