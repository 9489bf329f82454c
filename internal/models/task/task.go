package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Task struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	Status      Status     `json:"status" db:"status"`
	Priority    Priority   `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type Status string
type Priority string

const StatusTodo Status = "TODO"
const StatusInProgress Status = "IN_PROGRESS"
const StatusDone Status = "DONE"

const PriorityLow Priority = "LOW"
const PriorityMedium Priority = "MEDIUM"
const PriorityHigh Priority = "HIGH"

// порядок объявления = порядок в отчётах
var statuses = []Status{StatusTodo, StatusInProgress, StatusDone}
var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

// Ordinal возвращает позицию статуса в перечислении, -1 для неизвестного.
func (s Status) Ordinal() int {
	for i, v := range statuses {
		if v == s {
			return i
		}
	}
	return -1
}

func (s Status) Valid() bool {
	return s.Ordinal() >= 0
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (p Priority) Valid() bool {
	for _, v := range priorities {
		if v == p {
			return true
		}
	}
	return false
}

func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", raw)
	}
	return p, nil
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ApplyDefaults заполняет статус и приоритет, если они не заданы.
// Вызывается хранилищами перед вставкой.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// IsOverdue: срок раньше today и задача не завершена.
func (t *Task) IsOverdue(today time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return t.DueDate.Before(DateOf(today))
}

func (t *Task) Clone() *Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

// DateOf отбрасывает время суток: календарная дата в UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Filter - необязательные условия поиска, nil = без ограничения.
type Filter struct {
	Status      *Status
	Priority    *Priority
	Keyword     *string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
}

// MatchesKeyword: вхождение подстроки без учёта регистра, символы шаблонов не особые.
func (f Filter) MatchesKeyword(title string) bool {
	if f.Keyword == nil {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(*f.Keyword))
}

type StatusCount struct {
	Status Status `db:"status"`
	Total  int64  `db:"total"`
}
