package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Глобальный экземпляр логгера
var (
	globalLogger = zap.NewNop()
	mu           sync.RWMutex
)

// Options настройки файловых логов
type Options struct {
	File     string // читаемый лог
	JSONFile string // JSON лог, его читает панель логов UI
	Level    zapcore.Level
	Truncate bool // очищать JSON лог при старте
}

// Init инициализирует глобальный логгер.
// До вызова Init все сообщения отбрасываются.
func Init(opts Options) error {
	if opts.Truncate && opts.JSONFile != "" {
		// Очистка логов при перезапуске
		if err := os.Truncate(opts.JSONFile, 0); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("ошибка очистки лога %s: %w", opts.JSONFile, err)
		}
	}

	l, err := newLogger(opts)
	if err != nil {
		return err
	}

	SetLogger(l)
	return nil
}

// SetLogger подменяет глобальный логгер (используется в тестах)
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = l
}

// GetLogger возвращает глобальный экземпляр логгера
func GetLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Вспомогательные функции для удобства использования
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// Sync сбрасывает буферы
func Sync() {
	_ = GetLogger().Sync()
}

// newLogger создает логгер с записью в читаемый файл и JSON файл
func newLogger(opts Options) (*zap.Logger, error) {
	// Конфигурация энкодера
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("02.01.2006 - 15:04:05.000000000Z07:00")
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var cores []zapcore.Core

	if opts.File != "" {
		readableFile, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия лога %s: %w", opts.File, err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(readableFile), opts.Level))
	}

	if opts.JSONFile != "" {
		jsonFile, err := os.OpenFile(opts.JSONFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия лога %s: %w", opts.JSONFile, err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(jsonFile), opts.Level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	// Tee: читаемый файл + JSON файл
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)), nil
}
