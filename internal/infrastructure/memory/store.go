// Package memory implementa los puertos de persistencia en memoria para desarrollo y pruebas.
// Las transacciones trabajan sobre una copia del estado y la publican solo si fn no falla.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado completo del backend en memoria.
type Store struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	warehouses    map[string]entity.Warehouse
	variants      map[string]entity.Variant
	users         map[string]entity.User
	items         map[repository.BalanceKey]entity.StockItem
	events        []*entity.StockEvent // orden de inserción
	eventsByID    map[string]*entity.StockEvent
	eventKeys     map[string]string
	transfers     map[string]*entity.StockTransfer
	transferOrder []string
	transferKeys  map[string]string
}

func newState() *state {
	return &state{
		warehouses:   map[string]entity.Warehouse{},
		variants:     map[string]entity.Variant{},
		users:        map[string]entity.User{},
		items:        map[repository.BalanceKey]entity.StockItem{},
		eventsByID:   map[string]*entity.StockEvent{},
		eventKeys:    map[string]string{},
		transfers:    map[string]*entity.StockTransfer{},
		transferKeys: map[string]string{},
	}
}

// clone copia superficial suficiente: los eventos son inmutables y los traslados
// se reemplazan completos al cambiar de estado.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	c.events = append(c.events, s.events...)
	for k, v := range s.eventsByID {
		c.eventsByID[k] = v
	}
	for k, v := range s.eventKeys {
		c.eventKeys[k] = v
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	c.transferOrder = append(c.transferOrder, s.transferOrder...)
	for k, v := range s.transferKeys {
		c.transferKeys[k] = v
	}
	return c
}

// New crea un store vacío.
func New() *Store {
	return &Store{state: newState()}
}

// NewSeeded crea un store con dos bodegas, dos variantes y un usuario por rol para modo demo.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()
	s.PutWarehouse(entity.Warehouse{ID: "wh-main", Code: "MAIN", Name: "Bodega principal", Active: true, CreatedAt: now, UpdatedAt: now})
	s.PutWarehouse(entity.Warehouse{ID: "wh-store", Code: "STORE", Name: "Tienda", Active: true, CreatedAt: now, UpdatedAt: now})
	s.PutVariant(entity.Variant{
		ID: "var-coffee-500", SKU: "COF-500", Active: true,
		Product: entity.Product{ID: "prod-coffee", Name: "Café molido", Active: true},
	})
	s.PutVariant(entity.Variant{
		ID: "var-milk-1l", SKU: "MILK-1L", Active: true,
		Product: entity.Product{ID: "prod-milk", Name: "Leche entera", Active: true},
	})
	for _, u := range []entity.User{
		{ID: "user-admin", Email: "admin@example.com", Name: "Admin", Role: entity.RoleAdmin},
		{ID: "user-manager", Email: "manager@example.com", Name: "Manager", Role: entity.RoleManager},
		{ID: "user-seller", Email: "seller@example.com", Name: "Seller", Role: entity.RoleSeller},
	} {
		u.Active = true
		u.CreatedAt = now
		s.PutUser(u)
	}
	return s
}

// PutWarehouse registra o reemplaza una bodega.
func (s *Store) PutWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.warehouses[w.ID] = w
}

// PutVariant registra o reemplaza una variante con su producto.
func (s *Store) PutVariant(v entity.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.AttributeValueIDs = append([]string(nil), v.AttributeValueIDs...)
	s.state.variants[v.ID] = v
}

// PutUser registra o reemplaza un usuario.
func (s *Store) PutUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = u
}

// view acceso al estado: fuera de transacción toma el lock del store, dentro usa la copia.
type view struct {
	store *Store
	tx    *state
}

func (v view) read(fn func(st *state)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	fn(v.store.state)
}

func (v view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

func (s *Store) view() view { return view{store: s} }

// Repositorios fuera de transacción.

func (s *Store) StockEvents() repository.StockEventRepository { return &stockEventRepo{s.view()} }
func (s *Store) StockItems() repository.StockItemRepository { return &stockItemRepo{s.view()} }
func (s *Store) Transfers() repository.StockTransferRepository { return &transferRepo{s.view()} }
func (s *Store) Warehouses() repository.WarehouseRepository { return &warehouseRepo{s.view()} }
func (s *Store) Variants() repository.VariantRepository { return &variantRepo{s.view()} }
func (s *Store) Users() repository.UserRepository { return &userRepo{s.view()} }
func (s *Store) Reports() repository.ReportRepository { return &reportRepo{s.view()} }

// Run ejecuta fn con repositorios atados a una copia del estado. Las escrituras se serializan.
func (s *Store) Run(ctx context.Context, fn func(
	eventRepo repository.StockEventRepository,
	itemRepo repository.StockItemRepository,
	userRepo repository.UserRepository,
) error) error {
	return s.runTx(ctx, func(v view) error {
		return fn(&stockEventRepo{v}, &stockItemRepo{v}, &userRepo{v})
	})
}

// RunTransfer igual que Run para transiciones de traslados.
func (s *Store) RunTransfer(ctx context.Context, fn func(transferRepo repository.StockTransferRepository) error) error {
	return s.runTx(ctx, func(v view) error {
		return fn(&transferRepo{v})
	})
}

func (s *Store) runTx(ctx context.Context, fn func(v view) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.state.clone()
	if err := fn(view{store: s, tx: tx}); err != nil {
		return err
	}
	s.state = tx
	return nil
}
