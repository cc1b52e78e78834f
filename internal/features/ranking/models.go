// Package ranking считает лидерборды и ранги участников.
// models.go описывает строки лидерборда и сводку рангов.
package ranking

// Entry — строка лидерборда.
type Entry struct {
	UserID      int64
	Username    string
	DisplayName string
	Points      int64 // Сумма очков: общая или за окно (неделя/месяц)
	Level       int64
	Rank        int64
}

// Rankings — три независимых ранга участника.
type Rankings struct {
	Total   int64
	Weekly  int64
	Monthly int64
}

// Display возвращает отображаемое имя строки лидерборда.
func (e *Entry) Display() string {
	if e.Username != "" {
		return "@" + e.Username
	}
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return "аноним"
}
