package stripe

import (
	"fmt"

	"github.com/storefront/storefront-backend/pkg/logger"
)

// leveledLogger routes stripe-go's request logging into the service logger.
type leveledLogger struct{}

func (leveledLogger) Debugf(format string, v ...interface{}) {
	logger.Debug(fmt.Sprintf(format, v...), logger.Fields{"component": "stripe"})
}

func (leveledLogger) Infof(format string, v ...interface{}) {
	logger.Debug(fmt.Sprintf(format, v...), logger.Fields{"component": "stripe"})
}

func (leveledLogger) Warnf(format string, v ...interface{}) {
	logger.Warn(fmt.Sprintf(format, v...), logger.Fields{"component": "stripe"})
}

func (leveledLogger) Errorf(format string, v ...interface{}) {
	logger.Warn(fmt.Sprintf(format, v...), logger.Fields{"component": "stripe"})
}
