package grid

import "fmt"

// Status — единственное авторитетное состояние ячейки.
// Производные представления (isSaving и т.п.) считаются на чтении,
// параллельных множеств состояния нет.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSaving
	StatusSaved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CellKey — детерминированный ключ ячейки грида: одна и та же логическая
// ячейка всегда даёт один и тот же ключ. Это единственный join между UI,
// ожидающими правками и сетевыми вызовами.
//
// Когда известны оба id, в ключ входят оба: у одного ресурса ячейки
// разных проектов в одну неделю — это разные ячейки, схлопывать их
// нельзя. Односторонний вариант остаётся для гридов с одной осью,
// где правка несёт ровно один id.
func CellKey(resourceID, projectID uint, weekKey string) string {
	if resourceID != 0 && projectID != 0 {
		return fmt.Sprintf("r%d-p%d-%s", resourceID, projectID, weekKey)
	}
	id := resourceID
	if id == 0 {
		id = projectID
	}
	return fmt.Sprintf("%d-%s", id, weekKey)
}

// PendingChange — правка, ещё не подтверждённая хранилищем.
// OldValue — только бухгалтерия для diff и проверки перегрузки,
// по сети не уходит.
type PendingChange struct {
	CellKey     string
	ResourceID  uint
	ProjectID   uint
	WeekKey     string
	Hours       float64
	OldValue    float64
	HasOldValue bool

	// Rev проставляет store при каждом Add; по нему поздний результат
	// сохранения отличается от более свежей правки той же ячейки.
	Rev uint64
}

// CellState — проекция состояния ячейки для рендера. Только чтение.
type CellState struct {
	Status           Status  `json:"status"`
	IsSaving         bool    `json:"isSaving"`
	IsSaved          bool    `json:"isSaved"`
	IsFailed         bool    `json:"isFailed"`
	HasPendingChange bool    `json:"hasPendingChange"`
	PendingValue     float64 `json:"pendingValue"`
}
