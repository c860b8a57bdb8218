// Package memrepo implementaciones en memoria de los puertos de repositorio para tests.
package memrepo

import (
	"context"
	"sync"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users      map[string]entity.User
	resets     map[string]entity.PasswordReset
	roles      map[string]entity.Role
	perms      map[string]entity.Permission
	rolePerms  map[string][]string
	lots       map[string]entity.Lot
	sublots    map[string]entity.Sublot
	crops      map[string]entity.Crop
	supplies   map[string]entity.Supply
	items      map[string]entity.InventoryItem // por insumo
	movements  map[string]entity.Movement
	treatments map[string]entity.Treatment
	sensors    map[string]entity.Sensor
	alerts     map[string]entity.Alert
	finance    map[string]entity.FinanceRecord

	// FailNext hace que la próxima operación de escritura falle con este error.
	FailNext error
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		users:      map[string]entity.User{},
		resets:     map[string]entity.PasswordReset{},
		roles:      map[string]entity.Role{},
		perms:      map[string]entity.Permission{},
		rolePerms:  map[string][]string{},
		lots:       map[string]entity.Lot{},
		sublots:    map[string]entity.Sublot{},
		crops:      map[string]entity.Crop{},
		supplies:   map[string]entity.Supply{},
		items:      map[string]entity.InventoryItem{},
		movements:  map[string]entity.Movement{},
		treatments: map[string]entity.Treatment{},
		sensors:    map[string]entity.Sensor{},
		alerts:     map[string]entity.Alert{},
		finance:    map[string]entity.FinanceRecord{},
	}
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func (s *Store) Users() *UserRepo { return &UserRepo{s} }
func (s *Store) Resets() *ResetRepo { return &ResetRepo{s} }
func (s *Store) Roles() *RoleRepo { return &RoleRepo{s} }
func (s *Store) Permissions() *PermissionRepo { return &PermissionRepo{s} }
func (s *Store) Lots() *LotRepo { return &LotRepo{s} }
func (s *Store) Sublots() *SublotRepo { return &SublotRepo{s} }
func (s *Store) Crops() *CropRepo { return &CropRepo{s} }
func (s *Store) Supplies() *SupplyRepo { return &SupplyRepo{s} }
func (s *Store) Items() *ItemRepo { return &ItemRepo{s} }
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s} }
func (s *Store) Treatments() *TreatmentRepo { return &TreatmentRepo{s} }
func (s *Store) Sensors() *SensorRepo { return &SensorRepo{s} }
func (s *Store) Alerts() *AlertRepo { return &AlertRepo{s} }
func (s *Store) Finance() *FinanceRepo { return &FinanceRepo{s} }
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s} }

// TxRunner ejecuta fn sobre el Store y restaura el estado de inventario si fn falla.
type TxRunner struct{ s *Store }

type inventorySnapshot struct {
	supplies   map[string]entity.Supply
	items      map[string]entity.InventoryItem
	movements  map[string]entity.Movement
	treatments map[string]entity.Treatment
}

func (t *TxRunner) snapshot() inventorySnapshot {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return inventorySnapshot{
		supplies:   clone(t.s.supplies),
		items:      clone(t.s.items),
		movements:  clone(t.s.movements),
		treatments: clone(t.s.treatments),
	}
}

func (t *TxRunner) restore(snap inventorySnapshot) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.supplies = snap.supplies
	t.s.items = snap.items
	t.s.movements = snap.movements
	t.s.treatments = snap.treatments
}

func (t *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	itemRepo repository.InventoryItemRepository,
	supplyRepo repository.SupplyRepository,
) error) error {
	return t.RunTreatment(ctx, func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		supplyRepo repository.SupplyRepository,
		_ repository.TreatmentRepository,
	) error {
		return fn(movRepo, itemRepo, supplyRepo)
	})
}

func (t *TxRunner) RunTreatment(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	itemRepo repository.InventoryItemRepository,
	supplyRepo repository.SupplyRepository,
	treatmentRepo repository.TreatmentRepository,
) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	snap := t.snapshot()
	if err := fn(t.s.Movements(), t.s.Items(), t.s.Supplies(), t.s.Treatments()); err != nil {
		t.restore(snap)
		return err
	}
	return nil
}

// RunCredentials serializa como una tx y descarta cambios de usuarios y tokens si fn falla.
func (t *TxRunner) RunCredentials(ctx context.Context, fn func(
	users repository.UserRepository,
	resets repository.PasswordResetRepository,
) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	t.s.mu.Lock()
	users, resets := clone(t.s.users), clone(t.s.resets)
	t.s.mu.Unlock()
	if err := fn(t.s.Users(), t.s.Resets()); err != nil {
		t.s.mu.Lock()
		t.s.users, t.s.resets = users, resets
		t.s.mu.Unlock()
		return err
	}
	return nil
}

func clone[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func deleteOrNotFound[V any](m map[string]V, id string) error {
	if _, ok := m[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m, id)
	return nil
}
