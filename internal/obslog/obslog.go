package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 전역 로거. 콘솔+파일 동시 출력 지원.
var (
	globalLogger *zap.Logger = zap.NewNop()
)

// L는 전역 로거를 반환.
func L() *zap.Logger { return globalLogger }

// Sync flushes buffered entries; call once on shutdown.
func Sync() {
	_ = globalLogger.Sync()
}

type settings struct {
	level      zapcore.Level
	console    bool
	toFile     bool
	showCaller bool
	format     string
	filePath   string
}

func settingsFromEnv() settings {
	s := settings{
		level:      parseLevel(getenvDefault("LOG_LEVEL", "info")),
		console:    strings.EqualFold(getenvDefault("LOG_TO_CONSOLE", "true"), "true"),
		toFile:     strings.EqualFold(getenvDefault("LOG_TO_FILE", "true"), "true"),
		showCaller: strings.EqualFold(getenvDefault("LOG_CALLER", "false"), "true"),
		format:     strings.ToLower(strings.TrimSpace(getenvDefault("LOG_FORMAT", "legacy"))),
		filePath:   strings.TrimSpace(getenvDefault("LOG_FILE", filepath.Join("logs", "card-studio.log"))),
	}
	if s.format != "legacy" && s.format != "json" && s.format != "console" {
		s.format = "legacy"
	}
	if s.format == "legacy" {
		s.showCaller = true
	}
	return s
}

// InitFromEnv는 환경설정으로 zap 로거를 초기화.
func InitFromEnv() error {
	logger, err := build(settingsFromEnv())
	if err != nil {
		return err
	}
	globalLogger = logger
	return nil
}

func build(s settings) (*zap.Logger, error) {
	var cores []zapcore.Core

	if s.console {
		cores = append(cores, zapcore.NewCore(newEncoder(s.format), zapcore.AddSync(os.Stdout), s.level))
	}

	if s.toFile {
		if err := ensureDir(filepath.Dir(s.filePath)); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(newEncoder(s.format), zapcore.AddSync(f), s.level))
	}

	if len(cores) == 0 {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), s.level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	if s.showCaller {
		logger = logger.WithOptions(zap.AddCaller())
	}
	return logger.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func newEncoder(format string) zapcore.Encoder {
	switch format {
	case "json":
		return zapcore.NewJSONEncoder(jsonEncoderConfig())
	case "console":
		return zapcore.NewConsoleEncoder(consoleEncoderConfig(false))
	default:
		return zapcore.NewConsoleEncoder(legacyEncoderConfig())
	}
}

func ensureDir(dir string) error {
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "dpanic":
		return zapcore.DPanicLevel
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// 인코더 설정들
func legacyEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " | "
	return cfg
}

func consoleEncoderConfig(color bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return cfg
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}
