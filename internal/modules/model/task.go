package model

import (
	"time"

	"gorm.io/datatypes"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MDM"
	PriorityHigh   Priority = "HGH"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Status string

const (
	StatusScheduled  Status = "SCD"
	StatusInProgress Status = "PRG"
	StatusDone       Status = "DNE"
)

func (s Status) Valid() bool {
	return s == StatusScheduled || s == StatusInProgress || s == StatusDone
}

type Task struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	TaskProjectID uint `gorm:"not null;index" json:"task_project"`
	// plain column, no constraint: deleting the author leaves tasks in place
	TaskAuthorID uint `gorm:"not null;index" json:"task_author"`

	Label        string         `gorm:"type:varchar(100);not null" json:"label"`
	Description  *string        `gorm:"type:text" json:"description"`
	StartDate    datatypes.Date `gorm:"not null" json:"start_date"`
	EndDate      datatypes.Date `gorm:"not null" json:"end_date"`
	TaskPriority Priority       `gorm:"type:varchar(3);not null;default:'LOW';check:task_priority IN ('LOW','MDM','HGH')" json:"task_priority"`
	TaskStatus   Status         `gorm:"type:varchar(3);not null;default:'SCD';check:task_status IN ('SCD','PRG','DNE')" json:"task_status"`

	// Task <-> Project
	TaskProject *Project `gorm:"foreignKey:TaskProjectID;references:ID" json:"-"`

	// Task <-> User (assignees)
	TaskAssignees []User `gorm:"many2many:task_assignees;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Task) TableName() string { return "tasks" }

// AssigneeIDs returns the ids of the loaded assignees.
func (t *Task) AssigneeIDs() []uint {
	ids := make([]uint, 0, len(t.TaskAssignees))
	for _, u := range t.TaskAssignees {
		ids = append(ids, u.ID)
	}
	return ids
}

// DatesOrdered reports whether the end date is not before the start date.
func (t *Task) DatesOrdered() bool {
	return !time.Time(t.EndDate).Before(time.Time(t.StartDate))
}
