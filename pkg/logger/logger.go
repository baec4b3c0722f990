package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds the process logger and installs it as the zap global.
// The returned func flushes buffered entries.
func Init(production bool) (func(), error) {
	var zapConfig zap.Config
	if production {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return func() {}, err
	}

	zap.ReplaceGlobals(logger)

	return func() { _ = logger.Sync() }, nil
}
