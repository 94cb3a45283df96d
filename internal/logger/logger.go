// Package logger hands out named logrus loggers sharing one configuration.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string `env:"LEVEL,default=info"`
	Format     string `env:"FORMAT,default=text"` // text or json
	Path       string `env:"PATH,default=logs"`
	ToFile     bool   `env:"TO_FILE,default=false"`
	MaxSize    int    `env:"MAX_SIZE,default=100"` // MB
	MaxBackups int    `env:"MAX_BACKUPS,default=5"`
	MaxAge     int    `env:"MAX_AGE,default=30"` // days
	Compress   bool   `env:"COMPRESS,default=true"`
}

func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Path: "logs", MaxSize: 100, MaxBackups: 5, MaxAge: 30, Compress: true}
}

var (
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex
	config    = DefaultConfig()
)

// Init replaces the shared configuration. Loggers already handed out keep
// their settings, so call it before anything logs.
func Init(cfg Config) error {
	if cfg.ToFile {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return err
		}
	}
	if _, err := logrus.ParseLevel(cfg.Level); err != nil {
		return err
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	config = cfg
	loggers = make(map[string]*logrus.Logger)
	return nil
}

// Get returns the logger for name, creating it on first use.
func Get(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}
	l := newLogger(name, config)
	loggers[name] = l
	return l
}

func newLogger(name string, cfg Config) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	writers := []io.Writer{os.Stdout}
	if cfg.ToFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Path, name+".log"),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	l.SetOutput(io.MultiWriter(writers...))
	return l
}
