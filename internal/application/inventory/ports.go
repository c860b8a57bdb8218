package inventory

import (
	"context"

	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el movimiento y la cantidad del ítem se guarden juntos o no se guarden.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		supplyRepo repository.SupplyRepository,
	) error) error

	// RunTreatment igual que Run, con el repositorio de tratamientos en la misma tx.
	RunTreatment(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		supplyRepo repository.SupplyRepository,
		treatmentRepo repository.TreatmentRepository,
	) error) error
}
