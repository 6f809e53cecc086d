package logger

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type key string

var (
	Key       = key("logger")
	RequestID = key("request_id")
)

type Logger struct {
	log *zap.Logger
}

func New(ctx context.Context, outputPaths []string, env string) context.Context {
	var cfg zap.Config

	switch env {
	case "local":
		cfg = zap.Config{
			Encoding:         "console",
			Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
			OutputPaths:      outputPaths,
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig: zapcore.EncoderConfig{
				MessageKey: "msg",
				LevelKey:   "level",
				TimeKey:    "ts",
				EncodeTime: zapcore.ISO8601TimeEncoder,
			},
		}
	case "dev":
		cfg = zap.Config{
			Encoding:         "json",
			Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
			OutputPaths:      outputPaths,
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
	default:
		cfg = zap.Config{
			Encoding:         "json",
			Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
			OutputPaths:      outputPaths,
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
	}

	log, err := cfg.Build()
	if err != nil {
		panic("can't init logger: " + err.Error())
	}

	return context.WithValue(ctx, Key, &Logger{log: log})
}

// GetFromCtx returns the logger carried by ctx, or a no-op logger when the
// context was never wired through New. Storage tests run without one.
func GetFromCtx(ctx context.Context) *Logger {
	if l, ok := ctx.Value(Key).(*Logger); ok {
		return l
	}
	return &Logger{log: zap.NewNop()}
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.log.Info(msg, withRequestID(ctx, fields)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.log.Error(msg, withRequestID(ctx, fields)...)
}

func (l *Logger) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	l.log.Fatal(msg, withRequestID(ctx, fields)...)
}

func (l *Logger) With(ctx context.Context, fields ...zap.Field) context.Context {
	fields = withRequestID(ctx, fields)
	return context.WithValue(ctx, Key, &Logger{log: l.log.With(fields...)})
}

func (l *Logger) Sync() error {
	return l.log.Sync()
}

func withRequestID(ctx context.Context, fields []zap.Field) []zap.Field {
	if id, ok := ctx.Value(RequestID).(string); ok {
		fields = append(fields, zap.String(string(RequestID), id))
	}
	return fields
}

// Middleware injects the app logger and a request id into every request
// context and logs the request once the handler chain finishes.
func Middleware(ctx context.Context) gin.HandlerFunc {
	log := GetFromCtx(ctx)

	return func(c *gin.Context) {
		rctx := context.WithValue(c.Request.Context(), Key, log)
		rctx = context.WithValue(rctx, RequestID, uuid.NewString())
		c.Request = c.Request.WithContext(rctx)

		start := time.Now()
		c.Next()

		GetFromCtx(rctx).Info(rctx, "request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
