package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"afrilink/internal/domain"
	circuitbreaker "afrilink/internal/infrastructure/circuitbreaker"
)

// BreakerProducts guards a ProductRepository with a circuit breaker.
// While the breaker is open calls fail fast with ErrStoreUnavailable.
type BreakerProducts struct {
	next ProductRepository
	cb   *gobreaker.CircuitBreaker[any]
}

var _ ProductRepository = (*BreakerProducts)(nil)

func NewBreakerProducts(name string, next ProductRepository) *BreakerProducts {
	return &BreakerProducts{
		next: next,
		cb:   circuitbreaker.CreateCircuitBreaker[any](name, ErrStoreUnavailable),
	}
}

// State exposes the breaker state for metrics and tests.
func (b *BreakerProducts) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerProducts) execute(fn func() (any, error)) (any, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return res, err
}

func (b *BreakerProducts) Create(ctx context.Context, p *domain.Product) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Create(ctx, p)
	})
	return err
}

func (b *BreakerProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.Product), nil
}

func (b *BreakerProducts) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.List(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	return res.([]domain.Product), nil
}

func (b *BreakerProducts) UpdateStatus(ctx context.Context, id string, from, to domain.ProductStatus) (*domain.Product, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.UpdateStatus(ctx, id, from, to)
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.Product), nil
}
