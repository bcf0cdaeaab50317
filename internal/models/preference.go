package models

import "gorm.io/gorm"

// Пользовательские настройки (фильтры грида и т.п.) как явный KV,
// а не глобальное состояние на клиенте.
type Preference struct {
	gorm.Model
	UserID uint   `gorm:"not null;uniqueIndex:idx_pref_key"`
	Key    string `gorm:"size:100;not null;uniqueIndex:idx_pref_key"`
	Value  string `gorm:"type:text"` // сериализованный JSON, формат на стороне клиента
}
