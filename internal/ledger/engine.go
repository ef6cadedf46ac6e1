package ledger

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out identifiers for new products, sales, suppliers and
// expenses.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces time-ordered UUIDv7 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// SequenceGenerator produces prefix-1, prefix-2, ... Used where ids must be
// predictable.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Int64
}

func (g *SequenceGenerator) NewID() string {
	return g.Prefix + strconv.FormatInt(g.n.Add(1), 10)
}

// Engine applies operations to a State. It carries the id generator and the
// clock so the operations themselves stay deterministic.
type Engine struct {
	ids IDGenerator
	now func() time.Time
}

type Option func(*Engine)

func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		ids: UUIDGenerator{},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}
