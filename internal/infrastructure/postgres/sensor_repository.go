package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ repository.SensorRepository = (*SensorRepo)(nil)
	_ repository.AlertRepository  = (*AlertRepo)(nil)
)

// SensorRepo sensores registrados.
type SensorRepo struct {
	q Querier
}

func NewSensorRepository(q Querier) *SensorRepo {
	return &SensorRepo{q: q}
}

const sensorColumns = `id, nombre, tipo, unidad, campo, umbral_min, umbral_max, lote_id, activo, created_at, updated_at`

func (r *SensorRepo) Create(ctx context.Context, s *entity.Sensor) error {
	query := `
		INSERT INTO sensores (id, nombre, tipo, unidad, campo, umbral_min, umbral_max, lote_id, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.q.Exec(ctx, query,
		s.ID, s.Name, s.Type, s.Unit, s.Field, s.MinValue, s.MaxValue, nullable(s.LotID), s.Active, s.CreatedAt, s.UpdatedAt,
	); err != nil {
		return writeErr("insert sensor", err)
	}
	return nil
}

func (r *SensorRepo) GetByID(ctx context.Context, id string) (*entity.Sensor, error) {
	s, err := scanSensor(r.q.QueryRow(ctx, `SELECT `+sensorColumns+` FROM sensores WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sensor: %w", err)
	}
	return s, nil
}

func (r *SensorRepo) List(ctx context.Context) ([]*entity.Sensor, error) {
	return r.list(ctx, `SELECT `+sensorColumns+` FROM sensores ORDER BY nombre`)
}

// ListActive sensores que participan en la ingesta MQTT.
func (r *SensorRepo) ListActive(ctx context.Context) ([]*entity.Sensor, error) {
	return r.list(ctx, `SELECT `+sensorColumns+` FROM sensores WHERE activo ORDER BY nombre`)
}

func (r *SensorRepo) list(ctx context.Context, query string) ([]*entity.Sensor, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}
	defer rows.Close()

	out := []*entity.Sensor{}
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sensor: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SensorRepo) Update(ctx context.Context, s *entity.Sensor) error {
	query := `
		UPDATE sensores SET nombre = $2, tipo = $3, unidad = $4, campo = $5, umbral_min = $6,
			umbral_max = $7, lote_id = $8, activo = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.Name, s.Type, s.Unit, s.Field, s.MinValue, s.MaxValue, nullable(s.LotID), s.Active, s.UpdatedAt,
	)
	if err != nil {
		return writeErr("update sensor", err)
	}
	return affected(tag, "update sensor")
}

// Delete conserva el histórico de alertas (sensor_id queda NULL).
func (r *SensorRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sensores WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete sensor", err)
	}
	return affected(tag, "delete sensor")
}

func scanSensor(row pgx.Row) (*entity.Sensor, error) {
	var (
		s   entity.Sensor
		lot *string
	)
	err := row.Scan(&s.ID, &s.Name, &s.Type, &s.Unit, &s.Field, &s.MinValue, &s.MaxValue, &lot,
		&s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.LotID = deref(lot)
	return &s, nil
}

// AlertRepo alertas de umbral y de stock bajo.
type AlertRepo struct {
	q Querier
}

func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

func (r *AlertRepo) Create(ctx context.Context, a *entity.Alert) error {
	query := `
		INSERT INTO alertas (id, sensor_id, tipo, mensaje, valor, leida, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query,
		a.ID, nullable(a.SensorID), a.Type, a.Message, a.Value, a.Read, a.CreatedAt,
	); err != nil {
		return writeErr("insert alert", err)
	}
	return nil
}

// List alertas más recientes primero; onlyUnread filtra las no leídas.
func (r *AlertRepo) List(ctx context.Context, onlyUnread bool, limit, offset int) ([]*entity.Alert, int, error) {
	where := ""
	if onlyUnread {
		where = " WHERE NOT leida"
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM alertas`+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alerts: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sensor_id, tipo, mensaje, valor, leida, created_at
		FROM alertas`+where+`
		ORDER BY created_at DESC, id
		LIMIT NULLIF($1, 0) OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	out := []*entity.Alert{}
	for rows.Next() {
		var (
			a      entity.Alert
			sensor *string
		)
		if err := rows.Scan(&a.ID, &sensor, &a.Type, &a.Message, &a.Value, &a.Read, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan alert: %w", err)
		}
		a.SensorID = deref(sensor)
		out = append(out, &a)
	}
	return out, total, rows.Err()
}

func (r *AlertRepo) MarkRead(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE alertas SET leida = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	return affected(tag, "mark alert read")
}

func (r *AlertRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM alertas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	return affected(tag, "delete alert")
}
