// Package logger holds the process-wide zap logger. Until Initialize runs it
// discards everything, so packages and tests can log unconditionally.
package logger

import (
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop()

// SlowThreshold is the duration above which Performance logs at warn level.
var SlowThreshold = time.Second

type Config struct {
	Level       string // debug, info, warn, error; anything else means info
	Environment string // "production" selects the JSON encoder
	ServiceName string
}

func (c Config) production() bool {
	return c.Environment == "production"
}

func (c Config) level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func (c Config) zapConfig() zap.Config {
	if c.production() {
		zc := zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return zc
	}

	zc := zap.NewDevelopmentConfig()
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return zc
}

func Initialize(cfg Config) error {
	zc := cfg.zapConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.level())

	built, err := zc.Build(
		zap.AddCallerSkip(1),
		zap.Fields(
			zap.String("service", cfg.ServiceName),
			zap.String("env", cfg.Environment),
		),
	)
	if err != nil {
		return err
	}

	Log = built
	return nil
}

func MustInit(cfg Config) {
	if err := Initialize(cfg); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
}

// Bootstrap installs a logger for the window before configuration is loaded.
// The environment comes straight from ENV.
func Bootstrap(service string) {
	MustInit(Config{
		Level:       "info",
		Environment: os.Getenv("ENV"),
		ServiceName: service,
	})
}

func Sync() {
	_ = Log.Sync()
}

// TaskID and UserID are the id fields shared by every service log line.
func TaskID(id uuid.UUID) zap.Field {
	return zap.Stringer("task_id", id)
}

func UserID(id uuid.UUID) zap.Field {
	return zap.Stringer("user_id", id)
}

func WithModule(module string) *zap.Logger {
	return Log.With(zap.String("module", module))
}

func ForTask(module string, taskID uuid.UUID) *zap.Logger {
	return WithModule(module).With(TaskID(taskID))
}

func ForUser(module string, userID uuid.UUID) *zap.Logger {
	return WithModule(module).With(UserID(userID))
}

func ForRequest(requestID string) *zap.Logger {
	return Log.With(zap.String("request_id", requestID))
}

func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

// Audit records a state transition an operator may need to reconstruct later
// (verification consumed, task confirmed, reminder dispatched).
func Audit(action string, userID uuid.UUID, fields ...zap.Field) {
	Log.Info("audit_event", append([]zap.Field{
		zap.String("type", "audit"),
		zap.String("action", action),
		UserID(userID),
	}, fields...)...)
}

func Performance(operation string, duration time.Duration, fields ...zap.Field) {
	slow := duration > SlowThreshold
	fields = append([]zap.Field{
		zap.String("type", "performance"),
		zap.String("operation", operation),
		zap.Duration("duration", duration),
		zap.Bool("slow", slow),
	}, fields...)

	if slow {
		Log.Warn("slow_operation", fields...)
		return
	}
	Log.Debug("operation_complete", fields...)
}

func ErrorWithStack(msg string, err error, fields ...zap.Field) {
	Log.Error(msg, append(fields, zap.Error(err), zap.Stack("stack"))...)
}
