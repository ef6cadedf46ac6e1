package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	// Load returns the saved state, or ErrNotFound when nothing was saved yet.
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
}

// Service owns the live State of one store. Mutations are serialized and
// persisted before they become visible; reads work on snapshots.
type Service struct {
	repo   Repository
	engine *Engine

	mu    sync.RWMutex
	state State
}

func NewService(repo Repository, engine *Engine) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		state:  NewState(),
	}
}

// Open loads the persisted state. A store without saved state starts from
// NewState.
func (s *Service) Open(ctx context.Context) error {
	st, err := s.repo.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		st = NewState()
	} else if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Clone()
}

// apply runs op against the current state under the write lock and saves the
// result. The live state is replaced only once the save succeeded.
func (s *Service) apply(ctx context.Context, op func(State) (State, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := op(s.state)
	if err != nil {
		return err
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}

	s.state = next

	return nil
}

func (s *Service) UpsertProduct(ctx context.Context, params ProductParams) (*Product, error) {
	var p Product

	err := s.apply(ctx, func(st State) (State, error) {
		var err error

		st, p, err = s.engine.UpsertProduct(st, params)

		return st, err
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.apply(ctx, func(st State) (State, error) {
		return s.engine.DeleteProduct(st, id), nil
	})
}

func (s *Service) ImportProducts(ctx context.Context, rows []ProductParams) ([]Product, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var imported []Product

	err := s.apply(ctx, func(st State) (State, error) {
		var err error

		st, imported, err = s.engine.ImportProducts(st, rows)

		return st, err
	})
	if err != nil {
		return nil, err
	}

	return imported, nil
}

func (s *Service) AddCategory(ctx context.Context, name string) error {
	return s.apply(ctx, func(st State) (State, error) {
		return s.engine.AddCategory(st, name)
	})
}

func (s *Service) RenameCategory(ctx context.Context, oldName, newName string) error {
	return s.apply(ctx, func(st State) (State, error) {
		return s.engine.RenameCategory(st, oldName, newName)
	})
}

func (s *Service) RemoveCategory(ctx context.Context, name string) error {
	return s.apply(ctx, func(st State) (State, error) {
		return s.engine.RemoveCategory(st, name), nil
	})
}

func (s *Service) UpdateSettings(ctx context.Context, settings Settings) error {
	return s.apply(ctx, func(st State) (State, error) {
		return s.engine.UpdateSettings(st, settings)
	})
}

// Checkout records the cart as a sale and empties the cart. A failed checkout
// leaves both the cart and the state as they were.
func (s *Service) Checkout(ctx context.Context, cart *Cart) (*Sale, error) {
	var sale Sale

	err := s.apply(ctx, func(st State) (State, error) {
		var err error

		st, sale, err = s.engine.Checkout(st, *cart)

		return st, err
	})
	if err != nil {
		return nil, err
	}

	cart.Reset()

	return &sale, nil
}

func (s *Service) UpsertSupplier(ctx context.Context, params SupplierParams) (*Supplier, error) {
	var sup Supplier

	err := s.apply(ctx, func(st State) (State, error) {
		var err error

		st, sup, err = s.engine.UpsertSupplier(st, params)

		return st, err
	})
	if err != nil {
		return nil, err
	}

	return &sup, nil
}

func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	return s.apply(ctx, func(st State) (State, error) {
		return s.engine.DeleteSupplier(st, id), nil
	})
}

func (s *Service) AddExpense(ctx context.Context, params ExpenseParams) (*Expense, error) {
	var exp Expense

	err := s.apply(ctx, func(st State) (State, error) {
		var err error

		st, exp, err = s.engine.AddExpense(st, params)

		return st, err
	})
	if err != nil {
		return nil, err
	}

	return &exp, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	return s.apply(ctx, func(st State) (State, error) {
		return s.engine.DeleteExpense(st, id), nil
	})
}

func (s *Service) Product(id string) (*Product, error) {
	st := s.Snapshot()

	p, ok := st.Product(id)
	if !ok {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}

	return &p, nil
}

// Resolve looks up the product for a scanned code.
func (s *Service) Resolve(code string) (*Product, error) {
	p, err := ResolveCode(s.Snapshot(), code)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Service) Quote(cart Cart) decimal.Decimal {
	return Quote(s.Snapshot(), cart)
}

func (s *Service) Balance(day time.Time) Balance {
	return DailyBalance(s.Snapshot(), day)
}

func (s *Service) LowStock() []Product {
	return LowStockProducts(s.Snapshot())
}

func (s *Service) SalesByCategory() []CategoryTotal {
	return SalesByCategory(s.Snapshot())
}

func (s *Service) Dashboard(day time.Time) Dashboard {
	return BuildDashboard(s.Snapshot(), day)
}
