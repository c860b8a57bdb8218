package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var _ repository.FinanceRepository = (*FinanceRepo)(nil)

// FinanceRepo ingresos y egresos.
type FinanceRepo struct {
	q Querier
}

// NewFinanceRepository construye el adaptador de finanzas.
func NewFinanceRepository(q Querier) *FinanceRepo {
	return &FinanceRepo{q: q}
}

const financeColumns = `id, tipo, concepto, monto, fecha, cultivo_id, usuario_id, created_at`

func (r *FinanceRepo) Create(ctx context.Context, f *entity.FinanceRecord) error {
	query := `
		INSERT INTO finanzas (id, tipo, concepto, monto, fecha, cultivo_id, usuario_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.q.Exec(ctx, query,
		f.ID, f.Type, f.Concept, f.Amount, f.Date, nullable(f.CropID), nullable(f.UserID), f.CreatedAt,
	); err != nil {
		return writeErr("insert finance record", err)
	}
	return nil
}

func (r *FinanceRepo) GetByID(ctx context.Context, id string) (*entity.FinanceRecord, error) {
	f, err := scanFinance(r.q.QueryRow(ctx, `SELECT `+financeColumns+` FROM finanzas WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get finance record: %w", err)
	}
	return f, nil
}

// List registros filtrados, más recientes primero.
func (r *FinanceRepo) List(ctx context.Context, f repository.FinanceFilter) ([]*entity.FinanceRecord, int, error) {
	var c conds
	if f.Type != "" {
		c.add("tipo = $%d", f.Type)
	}
	if f.CropID != "" {
		c.add("cultivo_id = $%d", f.CropID)
	}
	if f.From != nil {
		c.add("fecha >= $%d", *f.From)
	}
	if f.To != nil {
		c.add("fecha <= $%d", *f.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM finanzas`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count finance records: %w", err)
	}
	suffix, args := c.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx,
		`SELECT `+financeColumns+` FROM finanzas`+c.where()+` ORDER BY fecha DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list finance records: %w", err)
	}
	defer rows.Close()

	out := []*entity.FinanceRecord{}
	for rows.Next() {
		rec, err := scanFinance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan finance record: %w", err)
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

func (r *FinanceRepo) Update(ctx context.Context, f *entity.FinanceRecord) error {
	query := `
		UPDATE finanzas SET tipo = $2, concepto = $3, monto = $4, fecha = $5, cultivo_id = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, f.ID, f.Type, f.Concept, f.Amount, f.Date, nullable(f.CropID))
	if err != nil {
		return writeErr("update finance record", err)
	}
	return affected(tag, "update finance record")
}

func (r *FinanceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM finanzas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete finance record: %w", err)
	}
	return affected(tag, "delete finance record")
}

// Totals ingresos y egresos del período; cero si no hay registros.
func (r *FinanceRepo) Totals(ctx context.Context, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(monto) FILTER (WHERE tipo = 'ingreso'), 0),
			COALESCE(SUM(monto) FILTER (WHERE tipo = 'egreso'), 0)
		FROM finanzas
		WHERE fecha BETWEEN $1 AND $2`
	var income, expense decimal.Decimal
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&income, &expense); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("finance totals: %w", err)
	}
	return income, expense, nil
}

// TotalsByCrop solo registros asociados a un cultivo.
func (r *FinanceRepo) TotalsByCrop(ctx context.Context, from, to time.Time) ([]repository.CropFinance, error) {
	query := `
		SELECT f.cultivo_id::text, COALESCE(c.nombre, ''),
			COALESCE(SUM(f.monto) FILTER (WHERE f.tipo = 'ingreso'), 0),
			COALESCE(SUM(f.monto) FILTER (WHERE f.tipo = 'egreso'), 0)
		FROM finanzas f
		LEFT JOIN cultivos c ON c.id = f.cultivo_id
		WHERE f.cultivo_id IS NOT NULL AND f.fecha BETWEEN $1 AND $2
		GROUP BY f.cultivo_id, c.nombre
		ORDER BY 1`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("finance totals by crop: %w", err)
	}
	defer rows.Close()

	out := []repository.CropFinance{}
	for rows.Next() {
		var cf repository.CropFinance
		if err := rows.Scan(&cf.CropID, &cf.CropName, &cf.Income, &cf.Expense); err != nil {
			return nil, fmt.Errorf("scan crop finance: %w", err)
		}
		out = append(out, cf)
	}
	return out, rows.Err()
}

func scanFinance(row pgx.Row) (*entity.FinanceRecord, error) {
	var (
		f            entity.FinanceRecord
		crop, userID *string
	)
	if err := row.Scan(&f.ID, &f.Type, &f.Concept, &f.Amount, &f.Date, &crop, &userID, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.CropID, f.UserID = deref(crop), deref(userID)
	return &f, nil
}
