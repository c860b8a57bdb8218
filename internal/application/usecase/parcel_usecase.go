package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/geo"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// LotStatusActive estado inicial de un lote.
const LotStatusActive = "activo"

// ParcelUseCase lotes y sublotes con su geometría.
type ParcelUseCase struct {
	lotRepo    repository.LotRepository
	sublotRepo repository.SublotRepository
}

// NewParcelUseCase construye el caso de uso.
func NewParcelUseCase(lotRepo repository.LotRepository, sublotRepo repository.SublotRepository) *ParcelUseCase {
	return &ParcelUseCase{lotRepo: lotRepo, sublotRepo: sublotRepo}
}

// CreateLot crea un lote sin polígono.
func (uc *ParcelUseCase) CreateLot(ctx context.Context, in dto.LotRequest) (*dto.LotResponse, error) {
	now := time.Now()
	status := in.Status
	if status == "" {
		status = LotStatusActive
	}
	lot := &entity.Lot{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Status:      status,
		AreaM2:      decimal.Zero,
		Coordinates: []entity.Point{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.lotRepo.Create(ctx, lot); err != nil {
		return nil, err
	}
	return toLotResponse(lot, nil), nil
}

// GetLot lote con sus sublotes.
func (uc *ParcelUseCase) GetLot(ctx context.Context, id string) (*dto.LotResponse, error) {
	lot, err := uc.lot(ctx, id)
	if err != nil {
		return nil, err
	}
	subs, err := uc.sublotRepo.ListByLot(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLotResponse(lot, subs), nil
}

// ListLots lista lotes con paginación.
func (uc *ParcelUseCase) ListLots(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.LotResponse], error) {
	page.DefaultPage()
	list, total, err := uc.lotRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LotResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLotResponse(l, nil))
	}
	return &dto.ListResponse[dto.LotResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// UpdateLot modifica nombre, descripción y estado.
func (uc *ParcelUseCase) UpdateLot(ctx context.Context, id string, in dto.LotRequest) (*dto.LotResponse, error) {
	lot, err := uc.lot(ctx, id)
	if err != nil {
		return nil, err
	}
	lot.Name = strings.TrimSpace(in.Name)
	lot.Description = in.Description
	if in.Status != "" {
		lot.Status = in.Status
	}
	lot.UpdatedAt = time.Now()
	if err := uc.lotRepo.Update(ctx, lot); err != nil {
		return nil, err
	}
	return toLotResponse(lot, nil), nil
}

// DeleteLot elimina un lote; con sublotes asociados devuelve ErrConflict.
func (uc *ParcelUseCase) DeleteLot(ctx context.Context, id string) error {
	return uc.lotRepo.Delete(ctx, id)
}

// SetLotCoordinates valida y guarda el polígono del lote, recalculando el área.
// Los sublotes existentes que queden fuera del nuevo polígono lo invalidan.
func (uc *ParcelUseCase) SetLotCoordinates(ctx context.Context, id string, points []entity.Point) (*dto.LotResponse, error) {
	lot, err := uc.lot(ctx, id)
	if err != nil {
		return nil, err
	}
	ring, err := geo.NormalizeRing(points)
	if err != nil {
		return nil, err
	}
	subs, err := uc.sublotRepo.ListByLot(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		if len(s.Coordinates) > 0 && !geo.Within(s.Coordinates, ring) {
			return nil, fmt.Errorf("%w: el sublote %q quedaría fuera del lote", domain.ErrOutsideParent, s.Name)
		}
	}
	area := areaOf(ring)
	if err := uc.lotRepo.UpdateCoordinates(ctx, id, ring, area); err != nil {
		return nil, err
	}
	lot.Coordinates, lot.AreaM2 = ring, area
	return toLotResponse(lot, subs), nil
}

// CreateSublot crea un sublote dentro de un lote existente.
func (uc *ParcelUseCase) CreateSublot(ctx context.Context, in dto.SublotRequest) (*dto.SublotResponse, error) {
	if _, err := uc.lot(ctx, in.LotID); err != nil {
		return nil, err
	}
	now := time.Now()
	s := &entity.Sublot{
		ID:          uuid.New().String(),
		LotID:       in.LotID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		AreaM2:      decimal.Zero,
		Coordinates: []entity.Point{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.sublotRepo.Create(ctx, s); err != nil {
		return nil, err
	}
	out := toSublotResponse(s)
	return &out, nil
}

// GetSublot obtiene un sublote.
func (uc *ParcelUseCase) GetSublot(ctx context.Context, id string) (*dto.SublotResponse, error) {
	s, err := uc.sublot(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toSublotResponse(s)
	return &out, nil
}

// ListSublots sublotes de un lote (todos si lotID es vacío).
func (uc *ParcelUseCase) ListSublots(ctx context.Context, lotID string) ([]dto.SublotResponse, error) {
	subs, err := uc.sublotRepo.ListByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SublotResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, toSublotResponse(s))
	}
	return out, nil
}

// UpdateSublot modifica datos descriptivos. Mover a otro lote exige que el polígono quepa en el destino.
func (uc *ParcelUseCase) UpdateSublot(ctx context.Context, id string, in dto.SublotRequest) (*dto.SublotResponse, error) {
	s, err := uc.sublot(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.LotID != s.LotID {
		lot, err := uc.lot(ctx, in.LotID)
		if err != nil {
			return nil, err
		}
		if len(s.Coordinates) > 0 && !geo.Within(s.Coordinates, lot.Coordinates) {
			return nil, fmt.Errorf("%w: el polígono no cabe en el lote destino", domain.ErrOutsideParent)
		}
		s.LotID = in.LotID
	}
	s.Name = strings.TrimSpace(in.Name)
	s.Description = in.Description
	s.UpdatedAt = time.Now()
	if err := uc.sublotRepo.Update(ctx, s); err != nil {
		return nil, err
	}
	out := toSublotResponse(s)
	return &out, nil
}

// DeleteSublot elimina un sublote.
func (uc *ParcelUseCase) DeleteSublot(ctx context.Context, id string) error {
	return uc.sublotRepo.Delete(ctx, id)
}

// SetSublotCoordinates valida el polígono y exige que todos sus vértices estén dentro del lote.
func (uc *ParcelUseCase) SetSublotCoordinates(ctx context.Context, id string, points []entity.Point) (*dto.SublotResponse, error) {
	s, err := uc.sublot(ctx, id)
	if err != nil {
		return nil, err
	}
	ring, err := geo.NormalizeRing(points)
	if err != nil {
		return nil, err
	}
	lot, err := uc.lot(ctx, s.LotID)
	if err != nil {
		return nil, err
	}
	if !geo.Within(ring, lot.Coordinates) {
		return nil, fmt.Errorf("%w: algún vértice queda fuera del lote %q", domain.ErrOutsideParent, lot.Name)
	}
	area := areaOf(ring)
	if err := uc.sublotRepo.UpdateCoordinates(ctx, id, ring, area); err != nil {
		return nil, err
	}
	s.Coordinates, s.AreaM2 = ring, area
	out := toSublotResponse(s)
	return &out, nil
}

// Map todos los lotes y sublotes con polígono como GeoJSON FeatureCollection.
func (uc *ParcelUseCase) Map(ctx context.Context) (*dto.FeatureCollection, error) {
	lots, _, err := uc.lotRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	subs, err := uc.sublotRepo.ListByLot(ctx, "")
	if err != nil {
		return nil, err
	}
	fc := &dto.FeatureCollection{Type: "FeatureCollection", Features: []dto.Feature{}}
	for _, l := range lots {
		if len(l.Coordinates) == 0 {
			continue
		}
		fc.Features = append(fc.Features, dto.Feature{
			Type:     "Feature",
			Geometry: polygon(l.Coordinates),
			Properties: map[string]any{
				"id": l.ID, "tipo": "lote", "nombre": l.Name, "estado": l.Status, "area_m2": l.AreaM2,
			},
		})
	}
	for _, s := range subs {
		if len(s.Coordinates) == 0 {
			continue
		}
		fc.Features = append(fc.Features, dto.Feature{
			Type:     "Feature",
			Geometry: polygon(s.Coordinates),
			Properties: map[string]any{
				"id": s.ID, "tipo": "sublote", "nombre": s.Name, "lote_id": s.LotID, "area_m2": s.AreaM2,
			},
		})
	}
	return fc, nil
}

func (uc *ParcelUseCase) lot(ctx context.Context, id string) (*entity.Lot, error) {
	lot, err := uc.lotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote", domain.ErrNotFound)
	}
	return lot, nil
}

func (uc *ParcelUseCase) sublot(ctx context.Context, id string) (*entity.Sublot, error) {
	s, err := uc.sublotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: sublote", domain.ErrNotFound)
	}
	return s, nil
}

func areaOf(ring []entity.Point) decimal.Decimal {
	return decimal.NewFromFloat(geo.AreaM2(ring)).Round(2)
}

func polygon(ring []entity.Point) *dto.Geometry {
	coords := make([][2]float64, 0, len(ring))
	for _, p := range ring {
		coords = append(coords, [2]float64{p.Lng, p.Lat})
	}
	return &dto.Geometry{Type: "Polygon", Coordinates: [][][2]float64{coords}}
}

func toLotResponse(l *entity.Lot, subs []*entity.Sublot) *dto.LotResponse {
	out := &dto.LotResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		AreaM2:      l.AreaM2,
		Status:      l.Status,
		Coordinates: nonNilPoints(l.Coordinates),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	for _, s := range subs {
		out.Sublots = append(out.Sublots, toSublotResponse(s))
	}
	return out
}

func toSublotResponse(s *entity.Sublot) dto.SublotResponse {
	return dto.SublotResponse{
		ID:          s.ID,
		LotID:       s.LotID,
		Name:        s.Name,
		Description: s.Description,
		AreaM2:      s.AreaM2,
		Coordinates: nonNilPoints(s.Coordinates),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func nonNilPoints(p []entity.Point) []entity.Point {
	if p == nil {
		return []entity.Point{}
	}
	return p
}
