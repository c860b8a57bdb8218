package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env     string // development: consola legible; cualquier otro valor: JSON
	Level   string // trace, debug, info, warn, error
	Service string // se agrega como campo "service" si no está vacío
}

// Logger envuelve zerolog para inyectarlo en casos de uso e infraestructura.
type Logger struct {
	zl zerolog.Logger
}

// New construye el logger raíz y lo publica como logger global de zerolog.
func New(cfg Config) *Logger {
	ctx := zerolog.New(writerFor(cfg.Env)).
		Level(levelOf(cfg.Level)).
		With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	zl := ctx.Logger()
	log.Logger = zl
	return &Logger{zl: zl}
}

// Nop descarta todo; útil en tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func writerFor(env string) io.Writer {
	if env == "development" {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	return os.Stdout
}

// levelOf acepta los nombres de zerolog; un nivel vacío o desconocido queda en info.
func levelOf(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Component etiqueta las entradas con el subsistema que las emite.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// With devuelve un sublogger con un campo fijo adicional.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// Level nivel efectivo del logger.
func (l *Logger) Level() zerolog.Level {
	return l.zl.GetLevel()
}
