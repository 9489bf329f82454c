package logger

import (
	"context"
	"net/http"
	"taskflow/internal/transaction"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// до Init пишем в никуда, чтобы тесты не падали на nil
var Logger = zap.NewNop()

// Init заменяет глобальный логгер; время в логах всегда UTC.
func Init(development bool) error {
	config := zap.NewProductionConfig()
	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006/01/02 15:04:05"))
	}

	l, err := config.Build()
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

func Sync() {
	_ = Logger.Sync()
}

// Ctx возвращает логгер с полем transaction_id текущего запроса.
func Ctx(ctx context.Context) *zap.Logger {
	if id, ok := transaction.Current(ctx); ok {
		return Logger.With(zap.String("transaction_id", id))
	}
	return Logger
}

func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

func HttpRequestInfo(r *http.Request, msg string, fields ...zap.Field) {
	allFields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("query", r.URL.RawQuery),
		zap.String("client_ip", r.RemoteAddr),
	}
	allFields = append(allFields, fields...)
	Ctx(r.Context()).Info(msg, allFields...)
}

func Error(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Logger.Error(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}
