// Package tasktest - общие проверки для всех реализаций хранилища задач.
package tasktest

import (
	"context"
	"taskflow/internal/models/task"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Store interface {
	Create(ctx context.Context, t *task.Task) error
	Find(ctx context.Context, filter task.Filter) ([]*task.Task, error)
}

var keywordTitles = []string{"Fix bug", "50% done", "Задача Ф", `C:\tmp`, "snake_case"}

// KeywordFilter проверяет, что ключевое слово ищется буквально и без учёта регистра.
// Хранилище должно быть пустым.
func KeywordFilter(t *testing.T, store Store) {
	ctx := context.Background()
	for _, title := range keywordTitles {
		require.NoError(t, store.Create(ctx, &task.Task{Title: title}))
	}

	tests := []struct {
		keyword string
		want    []string
	}{
		{"_", []string{"snake_case"}},
		{"%", []string{"50% done"}},
		{"x_b", nil},
		{`\`, []string{`C:\tmp`}},
		{"ф", []string{"Задача Ф"}},
		{"ЗАДАЧА", []string{"Задача Ф"}},
		{"FIX", []string{"Fix bug"}},
		{"", keywordTitles},
	}

	for _, tt := range tests {
		t.Run("keyword "+tt.keyword, func(t *testing.T) {
			keyword := tt.keyword
			found, err := store.Find(ctx, task.Filter{Keyword: &keyword})
			require.NoError(t, err)

			titles := make([]string, 0, len(found))
			for _, tk := range found {
				titles = append(titles, tk.Title)
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}
}
