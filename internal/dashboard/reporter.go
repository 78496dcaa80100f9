package dashboard

import (
	"github.com/skalibog/signalfeed/pkg/logger"
	"go.uber.org/zap"
)

// Reporter канал уведомления пользователя об ошибках
type Reporter interface {
	Report(message string, err error)
}

// LogReporter заглушка: ошибки только пишутся в лог
type LogReporter struct{}

func (LogReporter) Report(message string, err error) {
	logger.Error(message, zap.Error(err))
}
