package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Label       string `gorm:"type:varchar(100);not null" json:"label"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`

	// written once on insert, ignored by updates
	CreationDate datatypes.Date `gorm:"<-:create;not null" json:"creation_date"`

	// Project <-> Task
	Tasks []Task `gorm:"foreignKey:TaskProjectID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Project <-> Message
	Messages []Message `gorm:"foreignKey:MessageProjectID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Project <-> Notification
	Notifications []Notification `gorm:"foreignKey:NotificationProjectID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if time.Time(p.CreationDate).IsZero() {
		p.CreationDate = Today()
	}
	return nil
}

// Today returns the current UTC calendar date.
func Today() datatypes.Date {
	y, m, d := time.Now().UTC().Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
