package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"afrilink/internal/domain"
	"afrilink/internal/events"
	"afrilink/internal/repository"
)

var ErrInvalidInput = errors.New("invalid input")

// FilterAll selects every status in ListProductsByStatus.
const FilterAll = "all"

// LifecycleListener reacts to a stored transition. Its errors are logged and never
// undo the transition.
type LifecycleListener interface {
	ProductStatusChanged(ctx context.Context, ev events.StatusChanged) error
}

// ProductService owns the product lifecycle and the dashboard listings.
type ProductService struct {
	repo      repository.ProductRepository
	publisher events.Publisher
	listeners []LifecycleListener
	timeout   time.Duration
	now       func() time.Time
}

func NewProductService(repo repository.ProductRepository, publisher events.Publisher, listeners ...LifecycleListener) *ProductService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		listeners: listeners,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithStoreTimeout bounds every store call made by the service.
func (s *ProductService) WithStoreTimeout(d time.Duration) *ProductService {
	s.timeout = d
	return s
}

func (s *ProductService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// CreateProductInput is what a vendor submits.
type CreateProductInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Commission  *int     `json:"commission"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
}

func (in CreateProductInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if !domain.ValidCategory(in.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}
	if in.Commission != nil && (*in.Commission < domain.MinCommission || *in.Commission > domain.MaxCommission) {
		return fmt.Errorf("%w: commission must be between %d and %d", ErrInvalidInput, domain.MinCommission, domain.MaxCommission)
	}
	return nil
}

// CreateProduct is the only way a product enters the system; it always starts pending.
func (s *ProductService) CreateProduct(ctx context.Context, actor domain.Actor, in CreateProductInput) (*domain.Product, error) {
	if actor.Role != domain.RoleVendor || actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	commission := domain.DefaultCommission
	if in.Commission != nil {
		commission = *in.Commission
	}
	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	p := domain.Product{
		VendorID:    actor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		Commission:  commission,
		Category:    in.Category,
		Images:      images,
		Status:      domain.StatusPending,
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.repo.Create(sctx, &p); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, p.ID, events.EventProductCreated, p); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "CreateProduct").Str("product_id", p.ID).Msg("")
	}
	return &p, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.repo.GetByID(sctx, id)
}

// ListVendorProducts returns the vendor's products in every status, newest first.
func (s *ProductService) ListVendorProducts(ctx context.Context, vendorID string) ([]domain.Product, error) {
	if vendorID == "" {
		return nil, ErrInvalidInput
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.repo.List(sctx, repository.ProductFilter{VendorID: vendorID})
}

func (s *ProductService) VendorStats(ctx context.Context, vendorID string) (*domain.VendorStats, error) {
	products, err := s.ListVendorProducts(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	var st domain.VendorStats
	for _, p := range products {
		st.Revenue += p.Sales * p.Price
		st.Sales += p.Sales
		switch p.Status {
		case domain.StatusApproved:
			st.ActiveProducts++
		case domain.StatusPending:
			st.Pending++
		}
	}
	return &st, nil
}

// ListProductsByStatus backs the admin moderation queues. filter is "all" or a status.
func (s *ProductService) ListProductsByStatus(ctx context.Context, filter string) ([]domain.Product, error) {
	f := repository.ProductFilter{}
	if filter != FilterAll {
		st := domain.ProductStatus(filter)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status filter %q", ErrInvalidInput, filter)
		}
		f.Status = st
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.repo.List(sctx, f)
}

// MarketQuery filters the marketplace listing.
type MarketQuery struct {
	Title    string
	MinPrice *int64
	MaxPrice *int64
}

// ListMarketplace returns approved products only.
func (s *ProductService) ListMarketplace(ctx context.Context, q MarketQuery) ([]domain.Product, error) {
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidInput)
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.repo.List(sctx, repository.ProductFilter{
		Status:         domain.StatusApproved,
		TitleSubstring: q.Title,
		MinPrice:       q.MinPrice,
		MaxPrice:       q.MaxPrice,
	})
}

// ApplyTransition moves a product along one edge of the lifecycle table.
// Checks run in order: action, role, existence, ownership, state. The write is a
// compare-and-swap on the status read here, so a concurrent change makes the
// call fail with ErrInvalidTransition and nothing is written.
func (s *ProductService) ApplyTransition(ctx context.Context, actor domain.Actor, productID string, action domain.Action) (*domain.Product, error) {
	rule, ok := domain.Transition(action)
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}
	if !actor.Role.Valid() || actor.ID == "" || actor.Role != rule.Actor {
		return nil, domain.ErrUnauthorized
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	p, err := s.repo.GetByID(sctx, productID)
	if err != nil {
		return nil, err
	}
	if rule.Actor == domain.RoleVendor && p.VendorID != actor.ID {
		return nil, domain.ErrUnauthorized
	}
	if _, err := domain.Check(action, actor.Role, p.Status); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(sctx, productID, rule.From, rule.To)
	if errors.Is(err, repository.ErrStatusConflict) {
		return nil, domain.ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("component", "ApplyTransition").
		Str("product_id", productID).
		Str("action", string(action)).
		Str("from", string(rule.From)).
		Str("to", string(rule.To)).
		Msg("product status changed")

	s.emit(ctx, events.StatusChanged{
		ProductID:    updated.ID,
		VendorID:     updated.VendorID,
		ProductTitle: updated.Title,
		Action:       action,
		From:         rule.From,
		To:           rule.To,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		OccurredAt:   s.now(),
	})
	return updated, nil
}

// emit runs after the write; failures only get logged.
func (s *ProductService) emit(ctx context.Context, ev events.StatusChanged) {
	if err := s.publisher.Publish(ctx, ev.ProductID, events.EventProductStatusChanged, ev); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "PublishStatusChanged").Str("product_id", ev.ProductID).Msg("")
	}
	for _, l := range s.listeners {
		if err := l.ProductStatusChanged(ctx, ev); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "LifecycleListener").Str("product_id", ev.ProductID).Msg("")
		}
	}
}

func (s *ProductService) Approve(ctx context.Context, admin domain.Actor, productID string) (*domain.Product, error) {
	return s.ApplyTransition(ctx, admin, productID, domain.ActionApprove)
}

func (s *ProductService) Reject(ctx context.Context, admin domain.Actor, productID string) (*domain.Product, error) {
	return s.ApplyTransition(ctx, admin, productID, domain.ActionReject)
}

func (s *ProductService) RequestTakedown(ctx context.Context, vendor domain.Actor, productID string) (*domain.Product, error) {
	return s.ApplyTransition(ctx, vendor, productID, domain.ActionRequestTakedown)
}

func (s *ProductService) ApproveTakedown(ctx context.Context, admin domain.Actor, productID string) (*domain.Product, error) {
	return s.ApplyTransition(ctx, admin, productID, domain.ActionApproveTakedown)
}

func (s *ProductService) RejectTakedown(ctx context.Context, admin domain.Actor, productID string) (*domain.Product, error) {
	return s.ApplyTransition(ctx, admin, productID, domain.ActionRejectTakedown)
}
