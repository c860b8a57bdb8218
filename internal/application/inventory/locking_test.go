package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
	"github.com/jhoicas/agrotrack-api/internal/testutil/memrepo"
)

// lockRecorder registra en orden los bloqueos pedidos dentro de la tx.
type lockRecorder struct{ calls []string }

type recordingItems struct {
	repository.InventoryItemRepository
	rec *lockRecorder
}

func (r recordingItems) GetBySupplyForUpdate(ctx context.Context, supplyID string) (*entity.InventoryItem, error) {
	r.rec.calls = append(r.rec.calls, "item-select:"+supplyID)
	return r.InventoryItemRepository.GetBySupplyForUpdate(ctx, supplyID)
}

func (r recordingItems) LockOrCreate(ctx context.Context, supplyID string, now time.Time) (*entity.InventoryItem, error) {
	r.rec.calls = append(r.rec.calls, "item:"+supplyID)
	return r.InventoryItemRepository.LockOrCreate(ctx, supplyID, now)
}

type recordingSupplies struct {
	repository.SupplyRepository
	rec *lockRecorder
}

func (r recordingSupplies) GetByIDForUpdate(ctx context.Context, id string) (*entity.Supply, error) {
	r.rec.calls = append(r.rec.calls, "supply:"+id)
	return r.SupplyRepository.GetByIDForUpdate(ctx, id)
}

type recordingTx struct {
	inner *memrepo.TxRunner
	rec   *lockRecorder
}

func (t recordingTx) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	itemRepo repository.InventoryItemRepository,
	supplyRepo repository.SupplyRepository,
) error) error {
	return t.inner.Run(ctx, func(m repository.MovementRepository, i repository.InventoryItemRepository, s repository.SupplyRepository) error {
		return fn(m, recordingItems{i, t.rec}, recordingSupplies{s, t.rec})
	})
}

func (t recordingTx) RunTreatment(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	itemRepo repository.InventoryItemRepository,
	supplyRepo repository.SupplyRepository,
	treatmentRepo repository.TreatmentRepository,
) error) error {
	return t.inner.RunTreatment(ctx, func(m repository.MovementRepository, i repository.InventoryItemRepository, s repository.SupplyRepository, tr repository.TreatmentRepository) error {
		return fn(m, recordingItems{i, t.rec}, recordingSupplies{s, t.rec}, tr)
	})
}

func newRecordingFixture(t *testing.T) (*fixture, *lockRecorder) {
	t.Helper()
	f := newFixture(t)
	rec := &lockRecorder{}
	f.movs = inventory.NewMovementUseCase(recordingTx{f.store.TxRunner(), rec}, f.store.Supplies(), f.store.Movements(), f.store.Items(), f.spy)
	return f, rec
}

func indexOf(calls []string, want string) int {
	for i, c := range calls {
		if c == want {
			return i
		}
	}
	return -1
}

func TestCreate_PrimeraEntradaCreaYBloqueaElItemAntesDelInsumo(t *testing.T) {
	f, rec := newRecordingFixture(t)
	cost := dec("40")

	_, err := f.movs.Create(context.Background(), inventory.MovementInput{
		SupplyID: supplyA, Type: entity.MovementEntrada, Quantity: dec("3"), UnitCost: &cost,
	})
	require.NoError(t, err)

	item := indexOf(rec.calls, "item:"+supplyA)
	supply := indexOf(rec.calls, "supply:"+supplyA)
	require.NotEqual(t, -1, item, "el ítem inexistente se crea y bloquea")
	require.NotEqual(t, -1, supply, "el costo se calcula con el insumo bloqueado")
	assert.Less(t, item, supply, "orden de bloqueo ítem -> insumo")
	assert.Equal(t, -1, indexOf(rec.calls, "item-select:"+supplyA), "sin lectura previa que pueda devolver nil")
	assert.True(t, f.qty(supplyA).Equal(dec("3")))
}

func TestCreate_SalidaSinItemNoDejaFilaEnCero(t *testing.T) {
	f, _ := newRecordingFixture(t)
	_, err := f.movs.Create(context.Background(), inventory.MovementInput{
		SupplyID: supplyB, Type: entity.MovementSalida, Quantity: dec("1"),
	})
	require.Error(t, err)

	item, err := f.store.Items().GetBySupply(context.Background(), supplyB)
	require.NoError(t, err)
	assert.Nil(t, item, "la tx fallida descarta el ítem creado en cero")
}

func TestTreatment_CostoLeidoConInsumoBloqueado(t *testing.T) {
	f, rec := newRecordingFixture(t)
	f.create(t, supplyA, entity.MovementEntrada, "10")
	rec.calls = nil

	require.NoError(t, f.store.Crops().Create(context.Background(), &entity.Crop{ID: cropID, Name: "Maíz", Status: entity.CropStatusActive}))
	uc := inventory.NewTreatmentUseCase(recordingTx{f.store.TxRunner(), rec}, f.store.Crops(), f.store.Treatments(), f.store.Supplies(), f.spy)
	_, err := uc.Create(context.Background(), "u1", dto.TreatmentRequest{
		CropID: cropID, Type: "fertilización", Date: "2026-03-01",
		Supplies: []dto.TreatmentSupplyRequest{{SupplyID: supplyA, Quantity: dec("2")}},
	})
	require.NoError(t, err)

	require.NotEqual(t, -1, indexOf(rec.calls, "supply:"+supplyA))
	assert.Less(t, indexOf(rec.calls, "item:"+supplyA), indexOf(rec.calls, "supply:"+supplyA))
}
