package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/agrotrack-api/internal/application/auth"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*TxRunner)(nil)
	_ auth.TxRunner      = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run ejecuta fn con repos de movimientos, inventario e insumos atados a la misma tx.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	itemRepo repository.InventoryItemRepository,
	supplyRepo repository.SupplyRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewMovementRepository(tx), NewInventoryItemRepository(tx), NewSupplyRepository(tx))
	})
}

// RunTreatment igual que Run, sumando el repositorio de tratamientos.
func (r *TxRunner) RunTreatment(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	itemRepo repository.InventoryItemRepository,
	supplyRepo repository.SupplyRepository,
	treatmentRepo repository.TreatmentRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(
			NewMovementRepository(tx),
			NewInventoryItemRepository(tx),
			NewSupplyRepository(tx),
			NewTreatmentRepository(tx),
		)
	})
}

// RunCredentials ejecuta fn con usuarios y tokens de recuperación en la misma tx.
func (r *TxRunner) RunCredentials(ctx context.Context, fn func(
	users repository.UserRepository,
	resets repository.PasswordResetRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewUserRepository(tx), NewPasswordResetRepository(tx))
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
