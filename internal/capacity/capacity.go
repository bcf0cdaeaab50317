package capacity

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultNonProjectHours — фиксированные непроектные часы в неделю
// (встречи, почта, админка), вычитаются из номинальной ёмкости.
const DefaultNonProjectHours = 8.0

const (
	nearCapacityThreshold = 80.0
	overallocThreshold    = 100.0
)

// EffectiveCapacityData — производные показатели загрузки ресурса за неделю.
// Считаются на лету, нигде не хранятся.
type EffectiveCapacityData struct {
	BaseCapacity          float64 `json:"baseCapacity"`
	NonProjectHours       float64 `json:"nonProjectHours"`
	EffectiveCapacity     float64 `json:"effectiveCapacity"`
	TotalAllocatedHours   float64 `json:"totalAllocatedHours"`
	RemainingCapacity     float64 `json:"remainingCapacity"`
	UtilizationPercentage float64 `json:"utilizationPercentage"`
	IsOverallocated       bool    `json:"isOverallocated"`
	IsNearCapacity        bool    `json:"isNearCapacity"`
}

type WarningSeverity string

const (
	SeverityWarning WarningSeverity = "warning"
	SeverityError   WarningSeverity = "error"
)

// Warning — результат проверки предлагаемой правки. Чисто информационный:
// сохранение никогда не блокируется.
type Warning struct {
	HasWarning     bool            `json:"hasWarning"`
	Message        string          `json:"message"`
	Severity       WarningSeverity `json:"severity,omitempty"`
	RemainingHours float64         `json:"remainingHours"`
}

// TotalsFunc отдаёт суммарные часы ресурса за неделю по всем проектам.
// Источник — внешняя сторона чтения (БД), после каждого успешного
// сохранения данные там уже свежие.
type TotalsFunc func(resourceID uint, weekKey string) float64

type Calculator struct {
	NonProjectHours float64
	Totals          TotalsFunc
}

func NewCalculator(totals TotalsFunc) *Calculator {
	return &Calculator{
		NonProjectHours: DefaultNonProjectHours,
		Totals:          totals,
	}
}

// Effective считает показатели загрузки ресурса за неделю.
// Ёмкость не уходит в минус; при нулевой эффективной ёмкости
// утилизация равна нулю (а не делению на ноль).
func (c *Calculator) Effective(resourceID uint, weeklyCapacity float64, weekKey string) EffectiveCapacityData {
	effective := weeklyCapacity - c.NonProjectHours
	if effective < 0 {
		effective = 0
	}

	total := c.Totals(resourceID, weekKey)

	var utilization float64
	if effective > 0 {
		utilization = total / effective * 100
	}

	return EffectiveCapacityData{
		BaseCapacity:          weeklyCapacity,
		NonProjectHours:       c.NonProjectHours,
		EffectiveCapacity:     effective,
		TotalAllocatedHours:   total,
		RemainingCapacity:     effective - total,
		UtilizationPercentage: utilization,
		IsOverallocated:       utilization > overallocThreshold,
		IsNearCapacity:        utilization > nearCapacityThreshold && utilization <= overallocThreshold,
	}
}

// CheckOverallocation оценивает предлагаемую правку ячейки.
// Старый вклад самой ячейки (currentProjectHours) вычитается из общей
// суммы до прибавления нового значения, иначе no-op правка выглядела бы
// как удвоение аллокации.
func (c *Calculator) CheckOverallocation(resourceID uint, weeklyCapacity float64, weekKey string, proposedHours, currentProjectHours float64) Warning {
	data := c.Effective(resourceID, weeklyCapacity, weekKey)

	projected := data.TotalAllocatedHours - currentProjectHours + proposedHours
	remaining := data.EffectiveCapacity - projected

	switch {
	case projected > data.EffectiveCapacity:
		return Warning{
			HasWarning: true,
			Severity:   SeverityError,
			Message: fmt.Sprintf("перегрузка: %.1f ч при эффективной ёмкости %.1f ч в неделю %s",
				projected, data.EffectiveCapacity, weekKey),
			RemainingHours: remaining,
		}
	case projected > data.EffectiveCapacity*nearCapacityThreshold/100:
		return Warning{
			HasWarning: true,
			Severity:   SeverityWarning,
			Message: fmt.Sprintf("загрузка близка к пределу: %.1f из %.1f ч в неделю %s",
				projected, data.EffectiveCapacity, weekKey),
			RemainingHours: remaining,
		}
	default:
		return Warning{
			Message:        fmt.Sprintf("остаётся %.1f ч в неделю %s", remaining, weekKey),
			RemainingHours: remaining,
		}
	}
}

// ParseWeeklyCapacity разбирает ёмкость, которая с клиента может прийти
// и строкой, и числом.
func ParseWeeklyCapacity(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("weekly capacity is empty")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid weekly capacity %q: %w", raw, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("weekly capacity must not be negative, got %v", v)
	}
	return v, nil
}
