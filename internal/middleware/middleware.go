package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"taskflow/internal/logger"
	"taskflow/internal/transaction"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TransactionID кладёт в контекст слот идентификатора транзакции и заполняет его из заголовка.
// Переданный идентификатор сразу возвращается в заголовке ответа.
func TransactionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := transaction.WithHolder(r.Context())
		transaction.Set(ctx, r.Header.Get(transaction.HeaderName))
		defer transaction.Clear(ctx)

		if id, ok := transaction.Current(ctx); ok {
			w.Header().Set(transaction.HeaderName, id)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zap.ErrorLevel
	case status >= http.StatusBadRequest:
		return zap.WarnLevel
	default:
		return zap.InfoLevel
	}
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		logger.HttpRequestInfo(r, "HTTP_IN: Начало запроса")

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		// логгер берём после обработки: id мог быть сгенерирован при ошибке
		logger.Ctx(r.Context()).Log(levelFor(status), "HTTP_OUT: Завершение запроса",
			zap.Int("status", status),
			zap.Int("bytes_written", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(started)),
		)
	})
}

// Recover перехватывает панику и отдаёт её в handle как ошибку.
// Если ответ уже начат, паника только логируется.
func Recover(handle func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww, ok := w.(chimw.WrapResponseWriter)
			if !ok {
				ww = chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Ctx(r.Context()).Error("HTTP: Паника при обработке запроса",
					zap.Any("panic", rec),
					zap.Int("status_written", ww.Status()),
					zap.ByteString("stack", debug.Stack()))

				if ww.Status() != 0 {
					return
				}
				handle(ww, r, fmt.Errorf("panic: %v", rec))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
