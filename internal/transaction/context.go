// Package transaction хранит идентификатор транзакции текущего запроса.
//
// Значение живёт в holder, который middleware кладёт в context запроса,
// поэтому параллельные запросы не видят идентификаторы друг друга.
package transaction

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const HeaderName = "X-Transaction-Id"

type holder struct {
	mtx sync.RWMutex
	id  string
}

type contextKey struct{}

// WithHolder возвращает context с пустым слотом под идентификатор.
func WithHolder(ctx context.Context) context.Context {
	if h := fromContext(ctx); h != nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, &holder{})
}

func fromContext(ctx context.Context) *holder {
	h, _ := ctx.Value(contextKey{}).(*holder)
	return h
}

// Set сохраняет id после trim. Пустое значение ничего не меняет.
func Set(ctx context.Context, id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	h := fromContext(ctx)
	if h == nil {
		return
	}
	h.mtx.Lock()
	h.id = id
	h.mtx.Unlock()
}

func Current(ctx context.Context) (string, bool) {
	h := fromContext(ctx)
	if h == nil {
		return "", false
	}
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return h.id, h.id != ""
}

// CurrentOrGenerate возвращает текущий id или создаёт и сохраняет новый UUID.
func CurrentOrGenerate(ctx context.Context) string {
	if id, ok := Current(ctx); ok {
		return id
	}
	id := uuid.New().String()
	Set(ctx, id)
	return id
}

func Clear(ctx context.Context) {
	h := fromContext(ctx)
	if h == nil {
		return
	}
	h.mtx.Lock()
	h.id = ""
	h.mtx.Unlock()
}
