package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/agrotrack-api/migrations"
	"github.com/jhoicas/agrotrack-api/pkg/config"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

// Migrate aplica las migraciones embebidas pendientes.
func Migrate(cfg config.DBConfig, log *logger.Logger) error {
	db, err := sql.Open("pgx", DSN(cfg))
	if err != nil {
		return fmt.Errorf("abrir conexión de migraciones: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("dialecto goose: %w", err)
	}
	if err := goose.Up(db, "."); err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("versión de esquema: %w", err)
	}
	log.Info().Int64("version", version).Msg("esquema al día")
	return nil
}

// gooseLogger redirige la salida de goose a zerolog.
type gooseLogger struct{ log *logger.Logger }

func (g gooseLogger) Fatalf(format string, v ...any) { g.log.Fatal().Msgf(format, v...) }
func (g gooseLogger) Printf(format string, v ...any) { g.log.Debug().Msgf(format, v...) }
