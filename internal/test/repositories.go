package test

import (
	"context"
	"sort"
	"sync"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/domain/repository"
)

type memState struct {
	staff    map[int64]model.Staff
	tables   map[int64]model.Table
	products map[int64]model.Product
	orders   map[int64]model.Order
	nextID   int64
	orderSeq int64
}

func (s *memState) clone() *memState {
	out := &memState{
		staff:    make(map[int64]model.Staff, len(s.staff)),
		tables:   make(map[int64]model.Table, len(s.tables)),
		products: make(map[int64]model.Product, len(s.products)),
		orders:   make(map[int64]model.Order, len(s.orders)),
		nextID:   s.nextID,
		orderSeq: s.orderSeq,
	}
	for k, v := range s.staff {
		out.staff[k] = v
	}
	for k, v := range s.tables {
		out.tables[k] = v
	}
	for k, v := range s.products {
		out.products[k] = v
	}
	for k, v := range s.orders {
		out.orders[k] = v.Clone()
	}
	return out
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

// MemoryStore is an in-memory repository.Factory and repository.UnitOfWork.
// Transactions are serialized and work on a copy that replaces the state on commit.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState

	// UpdateHook runs before every order update; a non-nil error aborts it.
	UpdateHook func(order *model.Order, expectedVersion int64) error
	// Err, when set, is returned by every repository call.
	Err error
	// Trace, when set, receives the name of table locks, occupancy writes and
	// open-order counts in the order they happen.
	Trace func(op string)

	Commits   int
	Rollbacks int
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: (&memState{}).clone()}
}

// Do implements repository.UnitOfWork.
func (m *MemoryStore) Do(ctx context.Context, fn func(ctx context.Context, tx repository.Factory) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	if err := fn(ctx, memFactory{store: m, tx: work}); err != nil {
		m.Rollbacks++
		return err
	}
	m.state = work
	m.Commits++
	return nil
}

func (m *MemoryStore) Staff() repository.StaffRepository      { return memFactory{store: m}.Staff() }
func (m *MemoryStore) Orders() repository.OrderRepository     { return memFactory{store: m}.Orders() }
func (m *MemoryStore) Tables() repository.TableRepository     { return memFactory{store: m}.Tables() }
func (m *MemoryStore) Products() repository.ProductRepository { return memFactory{store: m}.Products() }

// SeedStaff stores staff directly and returns its id.
func (m *MemoryStore) SeedStaff(s model.Staff) int64 {
	_ = m.Staff().Create(context.Background(), &s)
	return s.ID
}

// SeedTable stores a free table directly and returns its id.
func (m *MemoryStore) SeedTable(t model.Table) int64 {
	_ = m.Tables().Create(context.Background(), &t)
	return t.ID
}

// SeedProduct stores product directly and returns its id.
func (m *MemoryStore) SeedProduct(p model.Product) int64 {
	_ = m.Products().Create(context.Background(), &p)
	return p.ID
}

type memFactory struct {
	store *MemoryStore
	tx    *memState
}

func (f memFactory) with(fn func(s *memState) error) error {
	if f.store.Err != nil {
		return f.store.Err
	}
	if f.tx != nil {
		return fn(f.tx)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return fn(f.store.state)
}

func (f memFactory) trace(op string) {
	if f.store.Trace != nil {
		f.store.Trace(op)
	}
}

func (f memFactory) Staff() repository.StaffRepository      { return memStaff{f} }
func (f memFactory) Orders() repository.OrderRepository     { return memOrders{f} }
func (f memFactory) Tables() repository.TableRepository     { return memTables{f} }
func (f memFactory) Products() repository.ProductRepository { return memProducts{f} }

type memStaff struct{ f memFactory }

func (r memStaff) Create(_ context.Context, staff *model.Staff) error {
	return r.f.with(func(s *memState) error {
		for _, existing := range s.staff {
			if existing.Login == staff.Login {
				return domainErrors.ErrAlreadyExists
			}
		}
		staff.ID = s.id()
		s.staff[staff.ID] = *staff
		return nil
	})
}

func (r memStaff) GetByLogin(_ context.Context, login string) (*model.Staff, error) {
	var out *model.Staff
	err := r.f.with(func(s *memState) error {
		for _, existing := range s.staff {
			if existing.Login == login {
				v := existing
				out = &v
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return out, err
}

func (r memStaff) GetByID(_ context.Context, id int64) (*model.Staff, error) {
	var out *model.Staff
	err := r.f.with(func(s *memState) error {
		v, ok := s.staff[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

type memTables struct{ f memFactory }

func (r memTables) Create(_ context.Context, table *model.Table) error {
	return r.f.with(func(s *memState) error {
		for _, existing := range s.tables {
			if existing.Number == table.Number {
				return domainErrors.ErrAlreadyExists
			}
		}
		if table.Status == "" {
			table.Status = model.TableStatusFree
		}
		table.ID = s.id()
		s.tables[table.ID] = *table
		return nil
	})
}

func (r memTables) GetByID(_ context.Context, id int64) (*model.Table, error) {
	var out *model.Table
	err := r.f.with(func(s *memState) error {
		v, ok := s.tables[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

func (r memTables) GetForUpdate(ctx context.Context, id int64) (*model.Table, error) {
	r.f.trace("tables.lock")
	return r.GetByID(ctx, id)
}

func (r memTables) List(context.Context) ([]model.Table, error) {
	var out []model.Table
	err := r.f.with(func(s *memState) error {
		for _, v := range s.tables {
			out = append(out, v)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
		return nil
	})
	return out, err
}

func (r memTables) SetStatus(_ context.Context, id int64, status model.TableStatus) (*model.Table, error) {
	r.f.trace("tables.set_status")
	var out *model.Table
	err := r.f.with(func(s *memState) error {
		v, ok := s.tables[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		v.Status = status
		s.tables[id] = v
		out = &v
		return nil
	})
	return out, err
}

type memProducts struct{ f memFactory }

func (r memProducts) Create(_ context.Context, product *model.Product) error {
	return r.f.with(func(s *memState) error {
		for _, existing := range s.products {
			if existing.Name == product.Name {
				return domainErrors.ErrAlreadyExists
			}
		}
		product.ID = s.id()
		s.products[product.ID] = *product
		return nil
	})
}

func (r memProducts) GetByIDs(_ context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	err := r.f.with(func(s *memState) error {
		for _, id := range ids {
			if v, ok := s.products[id]; ok {
				out[id] = v
			}
		}
		return nil
	})
	return out, err
}

func (r memProducts) List(context.Context) ([]model.Product, error) {
	var out []model.Product
	err := r.f.with(func(s *memState) error {
		for _, v := range s.products {
			out = append(out, v)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r memProducts) SetAvailable(_ context.Context, id int64, available bool) (*model.Product, error) {
	var out *model.Product
	err := r.f.with(func(s *memState) error {
		v, ok := s.products[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		v.Available = available
		s.products[id] = v
		out = &v
		return nil
	})
	return out, err
}

type memOrders struct{ f memFactory }

func (r memOrders) Create(_ context.Context, order *model.Order) error {
	r.f.trace("orders.create")
	return r.f.with(func(s *memState) error {
		order.ID = s.id()
		s.orderSeq++
		order.Number = s.orderSeq
		order.Version = 1
		s.orders[order.ID] = order.Clone()
		return nil
	})
}

func (r memOrders) GetByID(_ context.Context, id int64) (*model.Order, error) {
	var out *model.Order
	err := r.f.with(func(s *memState) error {
		v, ok := s.orders[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		c := v.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (r memOrders) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.GetByID(ctx, id)
}

func (r memOrders) Update(_ context.Context, order *model.Order, expectedVersion int64) error {
	if hook := r.f.store.UpdateHook; hook != nil {
		if err := hook(order, expectedVersion); err != nil {
			return err
		}
	}
	return r.f.with(func(s *memState) error {
		v, ok := s.orders[order.ID]
		if !ok || v.Version != expectedVersion {
			return domainErrors.ErrConflict
		}
		order.Version = expectedVersion + 1
		s.orders[order.ID] = order.Clone()
		return nil
	})
}

func (r memOrders) List(_ context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var out []model.Order
	err := r.f.with(func(s *memState) error {
		for _, v := range s.orders {
			if filter.TableID > 0 && v.TableID != filter.TableID {
				continue
			}
			if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, v.Status) {
				continue
			}
			out = append(out, v.Clone())
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
		if filter.Limit > 0 && len(out) > filter.Limit {
			out = out[:filter.Limit]
		}
		return nil
	})
	return out, err
}

func (r memOrders) CountOpenByTable(_ context.Context, tableID, excludeOrderID int64) (int, error) {
	r.f.trace("orders.count_open")
	var n int
	err := r.f.with(func(s *memState) error {
		for _, v := range s.orders {
			if v.TableID == tableID && v.ID != excludeOrderID && !v.Status.Terminal() {
				n++
			}
		}
		return nil
	})
	return n, err
}

func containsStatus(list []model.OrderStatus, s model.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var (
	_ repository.Factory    = (*MemoryStore)(nil)
	_ repository.UnitOfWork = (*MemoryStore)(nil)
)
