package models

// Question — вопрос анкеты совместимости.
// Список статичен: сидится один раз (cmd/seed) и не редактируется.
type Question struct {
	ID      string
	Index   int32
	Text    string
	Options []string
}
