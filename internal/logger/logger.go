package logger

import (
	"go.uber.org/zap"
)

var log = zap.NewNop()

// Init replaces the no-op default with a production logger. Call once at
// process start; packages that log before Init stay silent.
func Init() {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	log = l
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Infof(format string, args ...interface{}) {
	log.Sugar().Infof(format, args...)
}

func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

func Errorf(format string, args ...interface{}) {
	log.Sugar().Errorf(format, args...)
}

func Fatal(msg string, fields ...zap.Field) {
	log.Fatal(msg, fields...)
}
