package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectPlanned   ProjectStatus = "planned"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectFinished  ProjectStatus = "finished"
	ProjectCancelled ProjectStatus = "cancelled"
)

type Project struct {
	gorm.Model
	Name        string        `gorm:"size:255;not null"`
	ClientName  string        `gorm:"size:255"` // Заказчик (свободный текст)
	Status      ProjectStatus `gorm:"type:varchar(50);not null"`
	Description string        `gorm:"type:text"`

	StartDate *time.Time
	EndDate   *time.Time

	OwnerID uint // User.ID создавшего планировщика

	Allocations []Allocation
}
