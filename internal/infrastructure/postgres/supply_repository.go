package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ repository.SupplyRepository        = (*SupplyRepo)(nil)
	_ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)
)

// SupplyRepo catálogo de insumos (usable con pool o tx).
type SupplyRepo struct {
	q Querier
}

// NewSupplyRepository construye el adaptador de insumos. Pasar pool o tx (Querier).
func NewSupplyRepository(q Querier) *SupplyRepo {
	return &SupplyRepo{q: q}
}

const supplyColumns = `id, nombre, categoria, unidad_medida, costo_unitario, stock_minimo, created_at, updated_at`

func (r *SupplyRepo) Create(ctx context.Context, s *entity.Supply) error {
	query := `
		INSERT INTO insumos (id, nombre, categoria, unidad_medida, costo_unitario, stock_minimo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.q.Exec(ctx, query,
		s.ID, s.Name, s.Category, s.Unit, s.UnitCost, s.MinStock, s.CreatedAt, s.UpdatedAt,
	); err != nil {
		return writeErr("insert supply", err)
	}
	return nil
}

func (r *SupplyRepo) GetByID(ctx context.Context, id string) (*entity.Supply, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *SupplyRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Supply, error) {
	return r.getOne(ctx, "id = $1 FOR UPDATE", id)
}

// GetByName búsqueda sin distinguir mayúsculas (índice único sobre lower(nombre)).
func (r *SupplyRepo) GetByName(ctx context.Context, name string) (*entity.Supply, error) {
	return r.getOne(ctx, "lower(nombre) = lower($1)", name)
}

func (r *SupplyRepo) getOne(ctx context.Context, cond, arg string) (*entity.Supply, error) {
	s, err := scanSupply(r.q.QueryRow(ctx, `SELECT `+supplyColumns+` FROM insumos WHERE `+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supply: %w", err)
	}
	return s, nil
}

func (r *SupplyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supply, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM insumos`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count supplies: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+supplyColumns+` FROM insumos ORDER BY nombre LIMIT NULLIF($1, 0) OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list supplies: %w", err)
	}
	defer rows.Close()

	out := []*entity.Supply{}
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan supply: %w", err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *SupplyRepo) Update(ctx context.Context, s *entity.Supply) error {
	query := `
		UPDATE insumos SET nombre = $2, categoria = $3, unidad_medida = $4, costo_unitario = $5,
			stock_minimo = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Category, s.Unit, s.UnitCost, s.MinStock, s.UpdatedAt)
	if err != nil {
		return writeErr("update supply", err)
	}
	return affected(tag, "update supply")
}

// UpdateCost actualiza el costo promedio ponderado tras una entrada.
func (r *SupplyRepo) UpdateCost(ctx context.Context, id string, unitCost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE insumos SET costo_unitario = $2, updated_at = now() WHERE id = $1`, id, unitCost)
	if err != nil {
		return writeErr("update supply cost", err)
	}
	return affected(tag, "update supply cost")
}

// Delete elimina el insumo y su ítem de inventario; con movimientos registrados devuelve ErrConflict.
func (r *SupplyRepo) Delete(ctx context.Context, id string) error {
	query := `
		WITH item AS (DELETE FROM inventario WHERE insumo_id = $1)
		DELETE FROM insumos WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return writeErr("delete supply", err)
	}
	return affected(tag, "delete supply")
}

func scanSupply(row pgx.Row) (*entity.Supply, error) {
	var s entity.Supply
	if err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Unit, &s.UnitCost, &s.MinStock, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// InventoryItemRepo cantidad almacenada por insumo (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const itemSelect = `
	SELECT i.id, i.insumo_id, i.cantidad, i.updated_at,
		s.nombre, s.unidad_medida, s.costo_unitario, s.stock_minimo
	FROM inventario i JOIN insumos s ON s.id = i.insumo_id`

// GetBySupply devuelve (nil, nil) si el insumo aún no tiene ítem.
func (r *InventoryItemRepo) GetBySupply(ctx context.Context, supplyID string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, itemSelect+` WHERE i.insumo_id = $1`, supplyID)
}

// GetBySupplyForUpdate bloquea solo la fila de inventario.
func (r *InventoryItemRepo) GetBySupplyForUpdate(ctx context.Context, supplyID string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, itemSelect+` WHERE i.insumo_id = $1 FOR UPDATE OF i`, supplyID)
}

// LockOrCreate inserta la fila en cero (ON CONFLICT DO NOTHING) antes de bloquearla,
// así dos primeras entradas concurrentes se serializan sobre la misma fila.
func (r *InventoryItemRepo) LockOrCreate(ctx context.Context, supplyID string, now time.Time) (*entity.InventoryItem, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventario (id, insumo_id, cantidad, updated_at)
		VALUES (gen_random_uuid(), $1, 0, $2)
		ON CONFLICT (insumo_id) DO NOTHING`, supplyID, now)
	if err != nil {
		return nil, writeErr("create inventory item", err)
	}
	it, err := r.GetBySupplyForUpdate(ctx, supplyID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, fmt.Errorf("lock inventory item: %w", domain.ErrNotFound)
	}
	return it, nil
}

func (r *InventoryItemRepo) getOne(ctx context.Context, query, supplyID string) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, supplyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

// Upsert inserta o actualiza la cantidad del insumo; el CHECK (cantidad >= 0) respalda la regla de stock.
func (r *InventoryItemRepo) Upsert(ctx context.Context, it *entity.InventoryItem) error {
	query := `
		INSERT INTO inventario (id, insumo_id, cantidad, updated_at)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4)
		ON CONFLICT (insumo_id)
		DO UPDATE SET cantidad = EXCLUDED.cantidad, updated_at = EXCLUDED.updated_at
		RETURNING id`
	if err := r.q.QueryRow(ctx, query, it.ID, it.SupplyID, it.Quantity, it.UpdatedAt).Scan(&it.ID); err != nil {
		return writeErr("upsert inventory item", err)
	}
	return nil
}

func (r *InventoryItemRepo) List(ctx context.Context) ([]*entity.InventoryItem, error) {
	return r.list(ctx, itemSelect+` ORDER BY s.nombre`)
}

// ListBelowMinimum ítems con cantidad menor al stock mínimo del insumo.
func (r *InventoryItemRepo) ListBelowMinimum(ctx context.Context) ([]*entity.InventoryItem, error) {
	return r.list(ctx, itemSelect+` WHERE i.cantidad < s.stock_minimo ORDER BY s.nombre`)
}

func (r *InventoryItemRepo) list(ctx context.Context, query string) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	out := []*entity.InventoryItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(&it.ID, &it.SupplyID, &it.Quantity, &it.UpdatedAt,
		&it.SupplyName, &it.Unit, &it.UnitCost, &it.MinStock)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
