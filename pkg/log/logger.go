package log

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// L é o logger global estruturado (zap.Logger).
	L *zap.Logger
	// S é o logger global sugarizado (zap.SugaredLogger), para logging estilo printf.
	S *zap.SugaredLogger
)

// New builds a zap logger for the given level and environment.
// logLevel pode ser "debug", "info", "warn", "error", "dpanic", "panic", "fatal".
// Any env other than "development" gets the production JSON config.
func New(logLevel string, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.ToLower(env) == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level, err := zapcore.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("falha ao construir o logger zap: %w", err)
	}
	return logger, nil
}

// Init inicializa os loggers globais L e S e substitui o logger global do zap.
func Init(logLevel string, env string) {
	logger, err := New(logLevel, env)
	if err != nil {
		// Logging é fundamental; sem ele não há como seguir.
		panic(err)
	}
	Set(logger)
}

// Set troca os loggers globais. Útil em testes (zap.NewNop()).
func Set(logger *zap.Logger) {
	L = logger
	S = logger.Sugar()
	zap.ReplaceGlobals(L)
}

// Sync descarrega logs em buffer. Chamar no defer de main.
func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}

func init() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}
	Init(logLevel, appEnv)
}
