package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ repository.MovementRepository  = (*MovementRepo)(nil)
	_ repository.TreatmentRepository = (*TreatmentRepo)(nil)
)

// MovementRepo movimientos de entrada/salida (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador de movimientos. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementSelect = `
	SELECT m.id, m.insumo_id, m.tipo, m.cantidad, m.costo_unitario, m.fecha, m.cultivo_id,
		m.tratamiento_id, m.usuario_id, m.observacion, m.created_at, s.nombre
	FROM movimientos m JOIN insumos s ON s.id = m.insumo_id`

// Create registra el movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movimientos (id, insumo_id, tipo, cantidad, costo_unitario, fecha, cultivo_id,
			tratamiento_id, usuario_id, observacion, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.SupplyID, m.Type, m.Quantity, m.UnitCost, m.Date, nullable(m.CropID),
		nullable(m.TreatmentID), nullable(m.UserID), m.Note, m.CreatedAt,
	)
	if err != nil {
		return writeErr("insert movement", err)
	}
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return r.getOne(ctx, movementSelect+` WHERE m.id = $1`, id)
}

// GetByIDForUpdate bloquea la fila del movimiento durante la edición.
func (r *MovementRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.getOne(ctx, movementSelect+` WHERE m.id = $1 FOR UPDATE OF m`, id)
}

func (r *MovementRepo) getOne(ctx context.Context, query, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE movimientos SET insumo_id = $2, tipo = $3, cantidad = $4, costo_unitario = $5,
			fecha = $6, cultivo_id = $7, observacion = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.SupplyID, m.Type, m.Quantity, m.UnitCost, m.Date, nullable(m.CropID), m.Note,
	)
	if err != nil {
		return writeErr("update movement", err)
	}
	return affected(tag, "update movement")
}

// Delete elimina el movimiento; si pertenece a un tratamiento su línea de detalle cae en cascada.
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movimientos WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete movement", err)
	}
	return affected(tag, "delete movement")
}

// List movimientos filtrados, más recientes primero, con el total sin paginar.
func (r *MovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.Movement, int, error) {
	var c conds
	if f.SupplyID != "" {
		c.add("m.insumo_id = $%d", f.SupplyID)
	}
	if f.Type != "" {
		c.add("m.tipo = $%d", f.Type)
	}
	if f.CropID != "" {
		c.add("m.cultivo_id = $%d", f.CropID)
	}
	if f.From != nil {
		c.add("m.fecha >= $%d", *f.From)
	}
	if f.To != nil {
		c.add("m.fecha <= $%d", *f.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movimientos m`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}
	suffix, args := c.page(f.Limit, f.Offset)
	out, err := r.query(ctx, movementSelect+c.where()+` ORDER BY m.fecha DESC, m.id`+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListBySupply historial completo del insumo (conciliación).
func (r *MovementRepo) ListBySupply(ctx context.Context, supplyID string) ([]*entity.Movement, error) {
	return r.query(ctx, movementSelect+` WHERE m.insumo_id = $1 ORDER BY m.fecha DESC, m.id`, supplyID)
}

func (r *MovementRepo) ListByTreatment(ctx context.Context, treatmentID string) ([]*entity.Movement, error) {
	return r.query(ctx, movementSelect+` WHERE m.tratamiento_id = $1 ORDER BY m.fecha DESC, m.id`, treatmentID)
}

// SupplyCostByCrop costo de salidas por cultivo; las salidas sin cultivo quedan con CropID vacío.
func (r *MovementRepo) SupplyCostByCrop(ctx context.Context, from, to time.Time) ([]repository.CropSupplyCost, error) {
	query := `
		SELECT COALESCE(m.cultivo_id::text, ''), COALESCE(c.nombre, ''),
			COALESCE(SUM(m.cantidad * m.costo_unitario), 0)
		FROM movimientos m
		LEFT JOIN cultivos c ON c.id = m.cultivo_id
		WHERE m.tipo = 'salida' AND m.fecha BETWEEN $1 AND $2
		GROUP BY m.cultivo_id, c.nombre
		ORDER BY 1`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("supply cost by crop: %w", err)
	}
	defer rows.Close()

	out := []repository.CropSupplyCost{}
	for rows.Next() {
		var c repository.CropSupplyCost
		if err := rows.Scan(&c.CropID, &c.CropName, &c.Cost); err != nil {
			return nil, fmt.Errorf("scan supply cost: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *MovementRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	out := []*entity.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m                   entity.Movement
		crop, treat, userID *string
	)
	err := row.Scan(&m.ID, &m.SupplyID, &m.Type, &m.Quantity, &m.UnitCost, &m.Date, &crop,
		&treat, &userID, &m.Note, &m.CreatedAt, &m.SupplyName)
	if err != nil {
		return nil, err
	}
	m.CropID, m.TreatmentID, m.UserID = deref(crop), deref(treat), deref(userID)
	return &m, nil
}

// TreatmentRepo tratamientos con su detalle de insumos (usable con pool o tx).
type TreatmentRepo struct {
	q Querier
}

// NewTreatmentRepository construye el adaptador de tratamientos. Pasar pool o tx (Querier).
func NewTreatmentRepository(q Querier) *TreatmentRepo {
	return &TreatmentRepo{q: q}
}

// Create inserta el tratamiento y su detalle. El FK a movimientos es diferido:
// las salidas se insertan después, dentro de la misma transacción.
func (r *TreatmentRepo) Create(ctx context.Context, t *entity.Treatment) error {
	query := `
		INSERT INTO tratamientos (id, cultivo_id, tipo, descripcion, fecha, usuario_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query,
		t.ID, t.CropID, t.Type, t.Description, t.Date, nullable(t.UserID), t.CreatedAt,
	); err != nil {
		return writeErr("insert treatment", err)
	}
	for _, s := range t.Supplies {
		_, err := r.q.Exec(ctx, `
			INSERT INTO tratamiento_insumos (tratamiento_id, insumo_id, cantidad, movimiento_id)
			VALUES ($1, $2, $3, $4)`,
			t.ID, s.SupplyID, s.Quantity, s.MovementID,
		)
		if err != nil {
			return writeErr("insert treatment supply", err)
		}
	}
	return nil
}

const treatmentSelect = `
	SELECT id, cultivo_id, tipo, descripcion, fecha, usuario_id, created_at
	FROM tratamientos`

func (r *TreatmentRepo) GetByID(ctx context.Context, id string) (*entity.Treatment, error) {
	list, err := r.query(ctx, treatmentSelect+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListByCrop tratamientos del cultivo (todos si cropID es vacío), más recientes primero.
func (r *TreatmentRepo) ListByCrop(ctx context.Context, cropID string) ([]*entity.Treatment, error) {
	var c conds
	if cropID != "" {
		c.add("cultivo_id = $%d", cropID)
	}
	return r.query(ctx, treatmentSelect+c.where()+` ORDER BY fecha DESC, id`, c.args...)
}

// Delete elimina el tratamiento; el detalle cae en cascada. Los movimientos deben borrarse antes.
func (r *TreatmentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tratamientos WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete treatment", err)
	}
	return affected(tag, "delete treatment")
}

func (r *TreatmentRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Treatment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list treatments: %w", err)
	}
	out := []*entity.Treatment{}
	byID := map[string]*entity.Treatment{}
	ids := []string{}
	for rows.Next() {
		var (
			t      entity.Treatment
			userID *string
		)
		if err := rows.Scan(&t.ID, &t.CropID, &t.Type, &t.Description, &t.Date, &userID, &t.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan treatment: %w", err)
		}
		t.UserID = deref(userID)
		t.Supplies = []entity.TreatmentSupply{}
		out = append(out, &t)
		byID[t.ID] = &t
		ids = append(ids, t.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list treatments: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}

	// Un solo viaje para el detalle; la conexión de una tx no admite dos cursores abiertos.
	detail, err := r.q.Query(ctx, `
		SELECT tratamiento_id, insumo_id, cantidad, movimiento_id
		FROM tratamiento_insumos
		WHERE tratamiento_id::text = ANY($1::text[])
		ORDER BY insumo_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list treatment supplies: %w", err)
	}
	defer detail.Close()
	for detail.Next() {
		var s entity.TreatmentSupply
		if err := detail.Scan(&s.TreatmentID, &s.SupplyID, &s.Quantity, &s.MovementID); err != nil {
			return nil, fmt.Errorf("scan treatment supply: %w", err)
		}
		if t, ok := byID[s.TreatmentID]; ok {
			t.Supplies = append(t.Supplies, s)
		}
	}
	return out, detail.Err()
}
