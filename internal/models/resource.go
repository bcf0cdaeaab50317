package models

import "gorm.io/gorm"

// Ресурс — человек, которого можно планировать по неделям
type Resource struct {
	gorm.Model
	Name           string  `gorm:"size:255;not null"`
	RoleTitle      string  `gorm:"size:100"`              // Должность: разработчик, аналитик и т.п.
	Email          string  `gorm:"size:255"`              // Рабочий email (необязательно)
	WeeklyCapacity float64 `gorm:"not null;default:40"`   // Номинальная ёмкость, часов в неделю
	Active         bool    `gorm:"not null;default:true"`

	Allocations []Allocation
}
