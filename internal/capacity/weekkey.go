package capacity

import (
	"fmt"
	"regexp"
	"time"
)

// Ключ недели — ISO-неделя вида "2025-W07". Нули в номере недели
// обязательны, чтобы строковый порядок совпадал с хронологическим.
var weekKeyRe = regexp.MustCompile(`^\d{4}-W\d{2}$`)

func FormatWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

func ValidWeekKey(key string) bool {
	return weekKeyRe.MatchString(key)
}
