package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sonicpods/internal/orders"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type Repository interface {
	Create(ctx context.Context, o orders.Order) (orders.Order, error)
	Get(ctx context.Context, id string) (orders.Order, error)
	List(ctx context.Context) ([]orders.Order, error)
	Update(ctx context.Context, o orders.Order) (orders.Order, error)
	Track(ctx context.Context, q orders.TrackQuery) (orders.Order, error)
}

type Publisher interface {
	Publish(ctx context.Context, event orders.OrderEvent) error
}

type Metrics struct {
	Created       prometheus.Counter
	StatusChanges *prometheus.CounterVec
	Fallbacks     *prometheus.CounterVec
}

type Service struct {
	repo      Repository
	fallback  Repository
	publisher Publisher
	logger    *slog.Logger
	metrics   Metrics
	now       func() time.Time
}

func New(repo Repository, fallback *orders.Store, publisher Publisher, logger *slog.Logger, metrics Metrics) *Service {
	return &Service{
		repo:      repo,
		fallback:  storeRepository{store: fallback},
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

type CreateInput struct {
	CustomerName string
	Email        string
	Phone        string
	Address      string
	City         string
	PostalCode   string
	Items        orders.Items
}

// Create places an order. The total is always computed from the items.
func (s *Service) Create(ctx context.Context, in CreateInput) (orders.Order, bool, error) {
	now := s.now().UTC()
	o := orders.Order{
		ID:           uuid.NewString(),
		CustomerName: strings.TrimSpace(in.CustomerName),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		PostalCode:   strings.TrimSpace(in.PostalCode),
		Items:        append(orders.Items(nil), in.Items...),
		Status:       orders.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	o.TotalAmount = o.Items.Total()
	if err := o.Validate(); err != nil {
		return orders.Order{}, false, err
	}

	var created orders.Order
	usedFallback, err := s.withFallback(ctx, "create_order", func(repo Repository) error {
		var err error
		created, err = repo.Create(ctx, o)
		return err
	})
	if err != nil {
		return orders.Order{}, false, fmt.Errorf("create order: %w", err)
	}

	s.metrics.Created.Inc()
	s.publish(ctx, orders.EventCreated, created, usedFallback)
	return created, usedFallback, nil
}

func (s *Service) List(ctx context.Context) ([]orders.Order, bool, error) {
	var list []orders.Order
	usedFallback, err := s.withFallback(ctx, "list_orders", func(repo Repository) error {
		var err error
		list, err = repo.List(ctx)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("list orders: %w", err)
	}
	return list, usedFallback, nil
}

func (s *Service) Get(ctx context.Context, id string) (orders.Order, bool, error) {
	var o orders.Order
	usedFallback, err := s.withFallback(ctx, "get_order", func(repo Repository) error {
		var err error
		o, err = repo.Get(ctx, strings.TrimSpace(id))
		return err
	})
	if err != nil {
		return orders.Order{}, false, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, usedFallback, nil
}

// UpdateStatus moves the order to status. Any status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, id string, status orders.Status) (orders.Order, bool, error) {
	if !status.Valid() {
		return orders.Order{}, false, fmt.Errorf("%w: %q", orders.ErrInvalidStatus, status)
	}

	var updated orders.Order
	usedFallback, err := s.withFallback(ctx, "update_order", func(repo Repository) error {
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		current.Status = status
		current.UpdatedAt = s.now().UTC()
		updated, err = repo.Update(ctx, current)
		return err
	})
	if err != nil {
		return orders.Order{}, false, fmt.Errorf("update order %s: %w", id, err)
	}

	s.metrics.StatusChanges.WithLabelValues(string(status)).Inc()
	s.publish(ctx, orders.EventStatusChanged, updated, usedFallback)
	return updated, usedFallback, nil
}

// Track returns the most recent order matching the query.
func (s *Service) Track(ctx context.Context, q orders.TrackQuery) (orders.Order, bool, error) {
	q.OrderID = strings.TrimSpace(q.OrderID)
	q.Email = strings.TrimSpace(q.Email)
	if err := q.Validate(); err != nil {
		return orders.Order{}, false, err
	}

	var o orders.Order
	usedFallback, err := s.withFallback(ctx, "track_order", func(repo Repository) error {
		var err error
		o, err = repo.Track(ctx, q)
		return err
	})
	if err != nil {
		return orders.Order{}, false, fmt.Errorf("track order: %w", err)
	}
	return o, usedFallback, nil
}

func (s *Service) withFallback(ctx context.Context, operation string, op func(repo Repository) error) (bool, error) {
	err := op(s.repo)
	if err == nil || isDomainError(err) || ctx.Err() != nil {
		return false, err
	}

	s.logger.Warn("order store unavailable, using fallback",
		"operation", operation,
		"error", err,
	)
	s.metrics.Fallbacks.WithLabelValues(operation).Inc()

	if ferr := op(s.fallback); ferr != nil {
		if isDomainError(ferr) {
			return true, ferr
		}
		return true, fmt.Errorf("fallback %s: %w (store: %v)", operation, ferr, err)
	}
	return true, nil
}

func (s *Service) publish(ctx context.Context, eventType string, o orders.Order, usedFallback bool) {
	if err := s.publisher.Publish(ctx, orders.OrderEvent{
		EventType:   eventType,
		OrderID:     o.ID,
		Email:       o.Email,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Fallback:    usedFallback,
		Timestamp:   s.now().UTC(),
	}); err != nil {
		s.logger.Error("publish "+eventType+" event failed",
			"order_id", o.ID,
			"error", err,
		)
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, orders.ErrNotFound) ||
		errors.Is(err, orders.ErrInvalidOrder) ||
		errors.Is(err, orders.ErrInvalidStatus) ||
		errors.Is(err, orders.ErrMissingLookup)
}

// storeRepository serves the Repository contract from the in-process book.
type storeRepository struct {
	store *orders.Store
}

func (r storeRepository) Create(_ context.Context, o orders.Order) (orders.Order, error) {
	r.store.Insert(o)
	return o, nil
}

func (r storeRepository) Get(_ context.Context, id string) (orders.Order, error) {
	return r.store.Get(id)
}

func (r storeRepository) List(context.Context) ([]orders.Order, error) {
	return r.store.List(), nil
}

func (r storeRepository) Update(_ context.Context, o orders.Order) (orders.Order, error) {
	if err := r.store.Update(o); err != nil {
		return orders.Order{}, err
	}
	return o, nil
}

func (r storeRepository) Track(_ context.Context, q orders.TrackQuery) (orders.Order, error) {
	return r.store.Track(q)
}
