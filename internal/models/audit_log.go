package models

import "time"

type AuditLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID uint
	User   User

	Entity   string `gorm:"size:50;not null"` // "resource", "project", "allocation"
	EntityID uint
	Action   string `gorm:"size:50;not null"` // "create", "update", "cell_save" и т.п.
	Details  string `gorm:"type:text"`
}
