package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// ItemUseCase gestión de catálogo: artículos y sus grafos de composición.
// No toca stock ni costos: eso es territorio exclusivo del mutador y el motor
// de costeo; aquí solo identidad, precios de venta y composición.
type ItemUseCase struct {
	itemRepo repository.ItemRepository
	compRepo repository.CompositionRepository
}

// NewItemUseCase construye el caso de uso de catálogo.
func NewItemUseCase(itemRepo repository.ItemRepository, compRepo repository.CompositionRepository) *ItemUseCase {
	return &ItemUseCase{itemRepo: itemRepo, compRepo: compRepo}
}

// Create crea un artículo. Los ingredientes son siempre simple; los bundles
// nacen con stock 0 forzado (su disponibilidad se deriva de componentes).
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.ItemTypeProduct, entity.ItemTypeIngredient:
	default:
		return nil, domain.ErrInvalidInput
	}
	kind := in.Kind
	if kind == "" {
		kind = entity.ItemKindSimple
	}
	switch kind {
	case entity.ItemKindSimple:
	case entity.ItemKindBundle:
		if in.Type == entity.ItemTypeIngredient {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.Price.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	item := &entity.Item{
		ID:        uuid.New().String(),
		SKU:       in.SKU,
		Name:      in.Name,
		Type:      in.Type,
		Kind:      kind,
		Unit:      in.Unit,
		Price:     in.Price,
		Cost:      decimal.Zero,
		OnHand:    decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.itemRepo.Create(item); err != nil {
		return nil, err
	}
	return uc.toResponse(item)
}

// GetByID obtiene un artículo con su disponibilidad derivada.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return uc.toResponse(item)
}

// List lista artículos, opcionalmente filtrados por tipo.
func (uc *ItemUseCase) List(ctx context.Context, itemType string, page dto.PageRequest) ([]dto.ItemResponse, error) {
	page.DefaultPage()
	items, err := uc.itemRepo.List(itemType, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		resp, err := uc.toResponse(it)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// Update modifica nombre, unidad y precio de venta. Cost y OnHand no se tocan.
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if in.Price.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.Name != "" {
		item.Name = in.Name
	}
	if in.Unit != "" {
		item.Unit = in.Unit
	}
	item.Price = in.Price
	item.UpdatedAt = time.Now()
	if err := uc.itemRepo.Update(item); err != nil {
		return nil, err
	}
	return uc.toResponse(item)
}

// Delete elimina un artículo sin movimientos. Si el libro o los lotes lo
// referencian, falla con ErrItemReferenced: la historia financiera no se
// borra en cascada.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return uc.itemRepo.Delete(id)
}

// AvailableQuantity devuelve la disponibilidad real de un artículo: su OnHand
// para simples; para bundles, min sobre componentes de
// floor(OnHand del componente / cantidad por bundle), recursivo si un
// componente es a su vez un bundle.
func (uc *ItemUseCase) AvailableQuantity(ctx context.Context, id string) (decimal.Decimal, error) {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return decimal.Zero, err
	}
	if item == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return uc.availability(item, map[string]bool{})
}

func (uc *ItemUseCase) availability(item *entity.Item, visiting map[string]bool) (decimal.Decimal, error) {
	if !item.IsBundle() {
		return item.OnHand, nil
	}
	if visiting[item.ID] {
		return decimal.Zero, domain.ErrCyclicComposition
	}
	visiting[item.ID] = true
	defer delete(visiting, item.ID)

	comps, err := uc.compRepo.ListComponents(item.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(comps) == 0 {
		return decimal.Zero, nil
	}
	var min decimal.Decimal
	first := true
	for _, c := range comps {
		child, err := uc.itemRepo.GetByID(c.ComponentID)
		if err != nil {
			return decimal.Zero, err
		}
		if child == nil {
			return decimal.Zero, domain.ErrNotFound
		}
		childAvail, err := uc.availability(child, visiting)
		if err != nil {
			return decimal.Zero, err
		}
		if !c.Quantity.GreaterThan(decimal.Zero) {
			return decimal.Zero, domain.ErrInvalidInput
		}
		buildable := childAvail.Div(c.Quantity).Floor()
		if first || buildable.LessThan(min) {
			min = buildable
			first = false
		}
	}
	return min, nil
}

func (uc *ItemUseCase) toResponse(item *entity.Item) (*dto.ItemResponse, error) {
	available := item.OnHand
	if item.IsBundle() {
		var err error
		available, err = uc.availability(item, map[string]bool{})
		if err != nil {
			return nil, err
		}
	}
	return &dto.ItemResponse{
		ID:        item.ID,
		SKU:       item.SKU,
		Name:      item.Name,
		Type:      item.Type,
		Kind:      item.Kind,
		Unit:      item.Unit,
		Price:     item.Price,
		Cost:      item.Cost,
		OnHand:    item.OnHand,
		Available: available,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}, nil
}
