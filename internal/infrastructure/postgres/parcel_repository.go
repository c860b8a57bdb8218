package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ repository.LotRepository    = (*LotRepo)(nil)
	_ repository.SublotRepository = (*SublotRepo)(nil)
	_ repository.CropRepository   = (*CropRepo)(nil)
)

// LotRepo lotes; el polígono vive en una columna JSONB [{lat,lng}, ...].
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes.
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, nombre, descripcion, area_m2, estado, coordenadas, created_at, updated_at`

func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	coords, err := encodePoints(l.Coordinates)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO lotes (id, nombre, descripcion, area_m2, estado, coordenadas, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.q.Exec(ctx, query,
		l.ID, l.Name, l.Description, l.AreaM2, l.Status, coords, l.CreatedAt, l.UpdatedAt,
	); err != nil {
		return writeErr("insert lot", err)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM lotes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

func (r *LotRepo) List(ctx context.Context, limit, offset int) ([]*entity.Lot, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM lotes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count lots: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+lotColumns+` FROM lotes ORDER BY nombre LIMIT NULLIF($1, 0) OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	out := []*entity.Lot{}
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lot: %w", err)
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// Update datos descriptivos; las coordenadas van por UpdateCoordinates.
func (r *LotRepo) Update(ctx context.Context, l *entity.Lot) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE lotes SET nombre = $2, descripcion = $3, estado = $4, updated_at = $5 WHERE id = $1`,
		l.ID, l.Name, l.Description, l.Status, l.UpdatedAt,
	)
	if err != nil {
		return writeErr("update lot", err)
	}
	return affected(tag, "update lot")
}

func (r *LotRepo) UpdateCoordinates(ctx context.Context, id string, coords []entity.Point, areaM2 decimal.Decimal) error {
	return updateCoordinates(ctx, r.q, "lotes", id, coords, areaM2)
}

// Delete falla con ErrConflict mientras el lote tenga sublotes.
func (r *LotRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM lotes WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete lot", err)
	}
	return affected(tag, "delete lot")
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var (
		l   entity.Lot
		raw []byte
	)
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &l.AreaM2, &l.Status, &raw, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	pts, err := decodePoints(raw)
	if err != nil {
		return nil, err
	}
	l.Coordinates = pts
	return &l, nil
}

// SublotRepo sublotes.
type SublotRepo struct {
	q Querier
}

// NewSublotRepository construye el adaptador de sublotes.
func NewSublotRepository(q Querier) *SublotRepo {
	return &SublotRepo{q: q}
}

const sublotColumns = `id, lote_id, nombre, descripcion, area_m2, coordenadas, created_at, updated_at`

func (r *SublotRepo) Create(ctx context.Context, s *entity.Sublot) error {
	coords, err := encodePoints(s.Coordinates)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO sublotes (id, lote_id, nombre, descripcion, area_m2, coordenadas, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.q.Exec(ctx, query,
		s.ID, s.LotID, s.Name, s.Description, s.AreaM2, coords, s.CreatedAt, s.UpdatedAt,
	); err != nil {
		return writeErr("insert sublot", err)
	}
	return nil
}

func (r *SublotRepo) GetByID(ctx context.Context, id string) (*entity.Sublot, error) {
	s, err := scanSublot(r.q.QueryRow(ctx, `SELECT `+sublotColumns+` FROM sublotes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sublot: %w", err)
	}
	return s, nil
}

func (r *SublotRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.Sublot, error) {
	var c conds
	if lotID != "" {
		c.add("lote_id = $%d", lotID)
	}
	rows, err := r.q.Query(ctx, `SELECT `+sublotColumns+` FROM sublotes`+c.where()+` ORDER BY nombre`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("list sublots: %w", err)
	}
	defer rows.Close()

	out := []*entity.Sublot{}
	for rows.Next() {
		s, err := scanSublot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sublot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SublotRepo) Update(ctx context.Context, s *entity.Sublot) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE sublotes SET lote_id = $2, nombre = $3, descripcion = $4, updated_at = $5 WHERE id = $1`,
		s.ID, s.LotID, s.Name, s.Description, s.UpdatedAt,
	)
	if err != nil {
		return writeErr("update sublot", err)
	}
	return affected(tag, "update sublot")
}

func (r *SublotRepo) UpdateCoordinates(ctx context.Context, id string, coords []entity.Point, areaM2 decimal.Decimal) error {
	return updateCoordinates(ctx, r.q, "sublotes", id, coords, areaM2)
}

// Delete deja sin sublote a los cultivos asignados (ON DELETE SET NULL).
func (r *SublotRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sublotes WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete sublot", err)
	}
	return affected(tag, "delete sublot")
}

func scanSublot(row pgx.Row) (*entity.Sublot, error) {
	var (
		s   entity.Sublot
		raw []byte
	)
	if err := row.Scan(&s.ID, &s.LotID, &s.Name, &s.Description, &s.AreaM2, &raw, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	pts, err := decodePoints(raw)
	if err != nil {
		return nil, err
	}
	s.Coordinates = pts
	return &s, nil
}

// updateCoordinates table es una constante interna (lotes o sublotes), nunca entrada del usuario.
func updateCoordinates(ctx context.Context, q Querier, table, id string, coords []entity.Point, areaM2 decimal.Decimal) error {
	raw, err := encodePoints(coords)
	if err != nil {
		return err
	}
	op := "update " + table + " coordinates"
	tag, err := q.Exec(ctx,
		`UPDATE `+table+` SET coordenadas = $2, area_m2 = $3, updated_at = now() WHERE id = $1`,
		id, raw, areaM2,
	)
	if err != nil {
		return writeErr(op, err)
	}
	return affected(tag, op)
}

func encodePoints(pts []entity.Point) (string, error) {
	if pts == nil {
		pts = []entity.Point{}
	}
	b, err := json.Marshal(pts)
	if err != nil {
		return "", fmt.Errorf("encode coordinates: %w", err)
	}
	return string(b), nil
}

func decodePoints(raw []byte) ([]entity.Point, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var pts []entity.Point
	if err := json.Unmarshal(raw, &pts); err != nil {
		return nil, fmt.Errorf("decode coordinates: %w", err)
	}
	if len(pts) == 0 {
		return nil, nil
	}
	return pts, nil
}

// CropRepo cultivos.
type CropRepo struct {
	q Querier
}

// NewCropRepository construye el adaptador de cultivos.
func NewCropRepository(q Querier) *CropRepo {
	return &CropRepo{q: q}
}

const cropColumns = `id, sublote_id, nombre, variedad, fecha_siembra, fecha_cosecha, estado, created_at, updated_at`

func (r *CropRepo) Create(ctx context.Context, c *entity.Crop) error {
	query := `
		INSERT INTO cultivos (id, sublote_id, nombre, variedad, fecha_siembra, fecha_cosecha, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.q.Exec(ctx, query,
		c.ID, nullable(c.SublotID), c.Name, c.Variety, c.SowingDate, c.HarvestDate, c.Status, c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return writeErr("insert crop", err)
	}
	return nil
}

func (r *CropRepo) GetByID(ctx context.Context, id string) (*entity.Crop, error) {
	c, err := scanCrop(r.q.QueryRow(ctx, `SELECT `+cropColumns+` FROM cultivos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get crop: %w", err)
	}
	return c, nil
}

// List cultivos más recientes primero.
func (r *CropRepo) List(ctx context.Context, f repository.CropFilter) ([]*entity.Crop, int, error) {
	var c conds
	if f.SublotID != "" {
		c.add("sublote_id = $%d", f.SublotID)
	}
	if f.Status != "" {
		c.add("estado = $%d", f.Status)
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM cultivos`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count crops: %w", err)
	}
	suffix, args := c.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx,
		`SELECT `+cropColumns+` FROM cultivos`+c.where()+` ORDER BY fecha_siembra DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list crops: %w", err)
	}
	defer rows.Close()

	out := []*entity.Crop{}
	for rows.Next() {
		crop, err := scanCrop(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan crop: %w", err)
		}
		out = append(out, crop)
	}
	return out, total, rows.Err()
}

func (r *CropRepo) Update(ctx context.Context, c *entity.Crop) error {
	query := `
		UPDATE cultivos SET sublote_id = $2, nombre = $3, variedad = $4, fecha_siembra = $5,
			fecha_cosecha = $6, estado = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, nullable(c.SublotID), c.Name, c.Variety, c.SowingDate, c.HarvestDate, c.Status, c.UpdatedAt,
	)
	if err != nil {
		return writeErr("update crop", err)
	}
	return affected(tag, "update crop")
}

// Delete falla con ErrConflict si el cultivo tiene tratamientos.
func (r *CropRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM cultivos WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete crop", err)
	}
	return affected(tag, "delete crop")
}

func scanCrop(row pgx.Row) (*entity.Crop, error) {
	var (
		c      entity.Crop
		sublot *string
	)
	if err := row.Scan(&c.ID, &sublot, &c.Name, &c.Variety, &c.SowingDate, &c.HarvestDate, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.SublotID = deref(sublot)
	return &c, nil
}
