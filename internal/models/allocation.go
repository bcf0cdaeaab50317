package models

import "gorm.io/gorm"

// Аллокация — часы ресурса на проект в конкретную неделю.
// Одна ячейка грида = одна запись, уникальная по тройке ресурс/проект/неделя.
type Allocation struct {
	gorm.Model
	ResourceID uint `gorm:"not null;uniqueIndex:idx_alloc_cell"`
	ProjectID  uint `gorm:"not null;uniqueIndex:idx_alloc_cell"`

	WeekKey string  `gorm:"size:10;not null;uniqueIndex:idx_alloc_cell"` // "2025-W07"
	Hours   float64 `gorm:"not null;default:0"`

	Resource Resource
	Project  Project
}
