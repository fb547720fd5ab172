package inventory_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para el motor de stock. Reproducen el contrato de los
// repositorios Postgres: GetByID/GetForUpdate devuelven copias (o nil, nil si
// no existe) y las escrituras mutan el store compartido.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	items     map[string]*entity.Item
	batches   []*entity.Batch // orden de inserción = orden de recepción
	ledger    []*entity.LedgerEntry
	comps     map[string][]*entity.BundleComponent
	recipes   map[string][]*entity.RecipeLine
	sales     map[string]*entity.Sale
	saleLines map[string][]*entity.SaleLine
	opnames   []*entity.StockOpname
}

func newMemStore() *memStore {
	return &memStore{
		items:     map[string]*entity.Item{},
		comps:     map[string][]*entity.BundleComponent{},
		recipes:   map[string][]*entity.RecipeLine{},
		sales:     map[string]*entity.Sale{},
		saleLines: map[string][]*entity.SaleLine{},
	}
}

func (s *memStore) addItem(it *entity.Item) {
	cp := *it
	s.items[it.ID] = &cp
}

func (s *memStore) addBatch(b *entity.Batch) {
	cp := *b
	s.batches = append(s.batches, &cp)
}

// sumRemaining devuelve Σ Remaining de los lotes de un artículo.
func (s *memStore) sumRemaining(itemID string) decimal.Decimal {
	var sum decimal.Decimal
	for _, b := range s.batches {
		if b.ItemID == itemID {
			sum = sum.Add(b.Remaining)
		}
	}
	return sum
}

func (s *memStore) repos() inventory.Repos {
	return inventory.Repos{
		Items:        &memItemRepo{s: s},
		Batches:      &memBatchRepo{s: s},
		Ledger:       &memLedgerRepo{s: s},
		Compositions: &memCompositionRepo{s: s},
		Sales:        &memSaleRepo{s: s},
		Opnames:      &memOpnameRepo{s: s},
	}
}

// memTxRunner ejecuta fn directo contra el store. No simula rollback: los
// casos de error del motor verifican antes de escribir.
type memTxRunner struct {
	s *memStore
}

func (t *memTxRunner) Run(_ context.Context, fn func(r inventory.Repos) error) error {
	return fn(t.s.repos())
}

// ── items ─────────────────────────────────────────────────────────────────────

type memItemRepo struct {
	s *memStore
}

func (r *memItemRepo) Create(item *entity.Item) error {
	r.s.addItem(item)
	return nil
}

func (r *memItemRepo) GetByID(id string) (*entity.Item, error) {
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *memItemRepo) GetBySKU(sku string) (*entity.Item, error) {
	for _, it := range r.s.items {
		if it.SKU == sku {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memItemRepo) List(itemType string, limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range r.s.items {
		if itemType == "" || it.Type == itemType {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *memItemRepo) ListByKind(kind string) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range r.s.items {
		if it.Kind == kind {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *memItemRepo) Update(item *entity.Item) error {
	if st, ok := r.s.items[item.ID]; ok {
		st.Name = item.Name
		st.Unit = item.Unit
		st.Price = item.Price
		st.UpdatedAt = item.UpdatedAt
	}
	return nil
}

func (r *memItemRepo) Delete(id string) error {
	delete(r.s.items, id)
	return nil
}

func (r *memItemRepo) GetForUpdate(id string) (*entity.Item, error) {
	return r.GetByID(id)
}

func (r *memItemRepo) UpdateStock(id string, onHand decimal.Decimal) error {
	if st, ok := r.s.items[id]; ok {
		st.OnHand = onHand
	}
	return nil
}

func (r *memItemRepo) UpdateCost(id string, cost decimal.Decimal) error {
	if st, ok := r.s.items[id]; ok {
		st.Cost = cost
	}
	return nil
}

// ── batches ───────────────────────────────────────────────────────────────────

type memBatchRepo struct {
	s *memStore
}

func (r *memBatchRepo) Create(batch *entity.Batch) error {
	r.s.addBatch(batch)
	return nil
}

func (r *memBatchRepo) GetByID(id string) (*entity.Batch, error) {
	for _, b := range r.s.batches {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memBatchRepo) GetByReference(itemID, reference string) (*entity.Batch, error) {
	var fallback *entity.Batch
	for _, b := range r.s.batches {
		if b.ItemID != itemID || b.Reference != reference {
			continue
		}
		if b.Remaining.GreaterThan(decimal.Zero) {
			cp := *b
			return &cp, nil
		}
		if fallback == nil {
			cp := *b
			fallback = &cp
		}
	}
	return fallback, nil
}

func (r *memBatchRepo) ListAvailable(itemID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.s.batches {
		if b.ItemID == itemID && b.Remaining.GreaterThan(decimal.Zero) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out, nil
}

func (r *memBatchRepo) ListByItem(itemID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.s.batches {
		if b.ItemID == itemID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out, nil
}

func (r *memBatchRepo) UpdateRemaining(id string, remaining decimal.Decimal) error {
	for _, b := range r.s.batches {
		if b.ID == id {
			b.Remaining = remaining
			return nil
		}
	}
	return nil
}

// ── ledger ────────────────────────────────────────────────────────────────────

type memLedgerRepo struct {
	s *memStore
}

func (r *memLedgerRepo) Append(entry *entity.LedgerEntry) error {
	cp := *entry
	r.s.ledger = append(r.s.ledger, &cp)
	return nil
}

func (r *memLedgerRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.s.ledger {
		if e.ItemID != itemID {
			continue
		}
		if from != nil && e.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !e.CreatedAt.Before(*to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memLedgerRepo) ListByReference(reference string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.s.ledger {
		if e.Reference == reference {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── compositions ──────────────────────────────────────────────────────────────

type memCompositionRepo struct {
	s *memStore
}

func (r *memCompositionRepo) ListComponents(bundleID string) ([]*entity.BundleComponent, error) {
	var out []*entity.BundleComponent
	for _, c := range r.s.comps[bundleID] {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memCompositionRepo) AddComponent(c *entity.BundleComponent) error {
	cp := *c
	r.s.comps[c.BundleID] = append(r.s.comps[c.BundleID], &cp)
	return nil
}

func (r *memCompositionRepo) RemoveComponent(bundleID, componentID string) error {
	var kept []*entity.BundleComponent
	for _, c := range r.s.comps[bundleID] {
		if c.ComponentID != componentID {
			kept = append(kept, c)
		}
	}
	r.s.comps[bundleID] = kept
	return nil
}

func (r *memCompositionRepo) ListRecipe(itemID string) ([]*entity.RecipeLine, error) {
	var out []*entity.RecipeLine
	for _, l := range r.s.recipes[itemID] {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memCompositionRepo) AddRecipeLine(l *entity.RecipeLine) error {
	cp := *l
	r.s.recipes[l.ItemID] = append(r.s.recipes[l.ItemID], &cp)
	return nil
}

func (r *memCompositionRepo) RemoveRecipeLine(itemID, ingredientID string) error {
	var kept []*entity.RecipeLine
	for _, l := range r.s.recipes[itemID] {
		if l.IngredientID != ingredientID {
			kept = append(kept, l)
		}
	}
	r.s.recipes[itemID] = kept
	return nil
}

func (r *memCompositionRepo) ListComposedItemIDs() ([]string, error) {
	seen := map[string]bool{}
	for id, cs := range r.s.comps {
		if len(cs) > 0 {
			seen[id] = true
		}
	}
	for id, ls := range r.s.recipes {
		if len(ls) > 0 {
			seen[id] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ── sales ─────────────────────────────────────────────────────────────────────

type memSaleRepo struct {
	s *memStore
}

func (r *memSaleRepo) Create(sale *entity.Sale) error {
	cp := *sale
	r.s.sales[sale.ID] = &cp
	return nil
}

func (r *memSaleRepo) CreateLine(line *entity.SaleLine) error {
	cp := *line
	r.s.saleLines[line.SaleID] = append(r.s.saleLines[line.SaleID], &cp)
	return nil
}

func (r *memSaleRepo) GetByID(id string) (*entity.Sale, error) {
	s, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSaleRepo) GetLines(saleID string) ([]*entity.SaleLine, error) {
	var out []*entity.SaleLine
	for _, l := range r.s.saleLines[saleID] {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memSaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	return r.GetByID(id)
}

func (r *memSaleRepo) Update(sale *entity.Sale) error {
	if st, ok := r.s.sales[sale.ID]; ok {
		st.Status = sale.Status
		st.PaidAt = sale.PaidAt
		st.RefundedAt = sale.RefundedAt
	}
	return nil
}

func (r *memSaleRepo) ListByStatusOlderThan(status string, cutoff time.Time) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.s.sales {
		if s.Status == status && s.CreatedAt.Before(cutoff) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memSaleRepo) ListByPeriod(from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.s.sales {
		if !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ── opnames ───────────────────────────────────────────────────────────────────

type memOpnameRepo struct {
	s *memStore
}

func (r *memOpnameRepo) Create(record *entity.StockOpname) error {
	cp := *record
	r.s.opnames = append(r.s.opnames, &cp)
	return nil
}

func (r *memOpnameRepo) ListByItem(itemID string, limit, offset int) ([]*entity.StockOpname, error) {
	var out []*entity.StockOpname
	for _, rec := range r.s.opnames {
		if rec.ItemID == itemID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memOpnameRepo) ListByPeriod(from, to time.Time, limit, offset int) ([]*entity.StockOpname, error) {
	var out []*entity.StockOpname
	for _, rec := range r.s.opnames {
		if !rec.CreatedAt.Before(from) && rec.CreatedAt.Before(to) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── helpers de construcción ───────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func simpleItem(id, sku string, onHand, cost decimal.Decimal) *entity.Item {
	now := time.Now()
	return &entity.Item{
		ID:        id,
		SKU:       sku,
		Name:      sku,
		Type:      entity.ItemTypeProduct,
		Kind:      entity.ItemKindSimple,
		Unit:      "und",
		Cost:      cost,
		OnHand:    onHand,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func bundleItem(id, sku string) *entity.Item {
	now := time.Now()
	return &entity.Item{
		ID:        id,
		SKU:       sku,
		Name:      sku,
		Type:      entity.ItemTypeProduct,
		Kind:      entity.ItemKindBundle,
		Unit:      "und",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func batchAt(id, itemID, ref string, qty, cost decimal.Decimal, at time.Time) *entity.Batch {
	return &entity.Batch{
		ID:         id,
		ItemID:     itemID,
		Reference:  ref,
		QuantityIn: qty,
		Remaining:  qty,
		UnitCost:   cost,
		ReceivedAt: at,
	}
}
