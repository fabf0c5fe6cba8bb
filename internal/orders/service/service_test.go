package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"sonicpods/internal/orders"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var errDB = errors.New("connection refused")

type mockRepo struct {
	createFn func(ctx context.Context, o orders.Order) (orders.Order, error)
	getFn    func(ctx context.Context, id string) (orders.Order, error)
	listFn   func(ctx context.Context) ([]orders.Order, error)
	updateFn func(ctx context.Context, o orders.Order) (orders.Order, error)
	trackFn  func(ctx context.Context, q orders.TrackQuery) (orders.Order, error)
}

func (m *mockRepo) Create(ctx context.Context, o orders.Order) (orders.Order, error) {
	return m.createFn(ctx, o)
}
func (m *mockRepo) Get(ctx context.Context, id string) (orders.Order, error) {
	return m.getFn(ctx, id)
}
func (m *mockRepo) List(ctx context.Context) ([]orders.Order, error) {
	return m.listFn(ctx)
}
func (m *mockRepo) Update(ctx context.Context, o orders.Order) (orders.Order, error) {
	return m.updateFn(ctx, o)
}
func (m *mockRepo) Track(ctx context.Context, q orders.TrackQuery) (orders.Order, error) {
	return m.trackFn(ctx, q)
}

// downRepo fails every call like an unreachable database.
func downRepo() *mockRepo {
	return &mockRepo{
		createFn: func(context.Context, orders.Order) (orders.Order, error) { return orders.Order{}, errDB },
		getFn:    func(context.Context, string) (orders.Order, error) { return orders.Order{}, errDB },
		listFn:   func(context.Context) ([]orders.Order, error) { return nil, errDB },
		updateFn: func(context.Context, orders.Order) (orders.Order, error) { return orders.Order{}, errDB },
		trackFn:  func(context.Context, orders.TrackQuery) (orders.Order, error) { return orders.Order{}, errDB },
	}
}

type mockPublisher struct {
	events []orders.OrderEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event orders.OrderEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func newTestService(repo Repository, store *orders.Store, pub Publisher) (*Service, Metrics) {
	metrics := Metrics{
		Created:       prometheus.NewCounter(prometheus.CounterOpts{Name: "test_orders_created_total", Help: "test"}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_order_status_total", Help: "test"}, []string{"status"}),
		Fallbacks:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_order_fallback_total", Help: "test"}, []string{"operation"}),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(repo, store, pub, logger, metrics)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, metrics
}

func checkoutInput() CreateInput {
	return CreateInput{
		CustomerName: " Ayesha Khan ",
		Email:        "ayesha@example.com",
		Address:      "12 Mall Road",
		City:         "Lahore",
		Items: orders.Items{
			{ProductID: "p1", ProductName: "SonicPods Pro Max", Quantity: 1, Price: 24999},
			{ProductID: "p2", ProductName: "AirBuds Lite", Quantity: 2, Price: 4999},
		},
	}
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name         string
		repo         *mockRepo
		mutate       func(in *CreateInput)
		wantErr      error
		wantFallback bool
	}{
		{
			name: "stored",
			repo: &mockRepo{createFn: func(_ context.Context, o orders.Order) (orders.Order, error) { return o, nil }},
		},
		{
			name:         "store down falls back",
			repo:         downRepo(),
			wantFallback: true,
		},
		{
			name:    "no items",
			repo:    downRepo(),
			mutate:  func(in *CreateInput) { in.Items = nil },
			wantErr: orders.ErrInvalidOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := orders.NewStore()
			pub := &mockPublisher{}
			svc, metrics := newTestService(tt.repo, store, pub)

			in := checkoutInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			got, usedFallback, err := svc.Create(context.Background(), in)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				if len(pub.events) != 0 {
					t.Fatal("no event expected on validation failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.TotalAmount != 34997 {
				t.Fatalf("want total 34997, got %d", got.TotalAmount)
			}
			if got.Status != orders.StatusPending || got.CustomerName != "Ayesha Khan" || got.ID == "" {
				t.Fatalf("unexpected order: %+v", got)
			}
			if usedFallback != tt.wantFallback {
				t.Fatalf("want fallback %v, got %v", tt.wantFallback, usedFallback)
			}
			if _, err := store.Get(got.ID); (err == nil) != tt.wantFallback {
				t.Fatalf("fallback store presence mismatch: %v", err)
			}
			if len(pub.events) != 1 || pub.events[0].EventType != orders.EventCreated {
				t.Fatalf("unexpected events: %+v", pub.events)
			}
			if testutil.ToFloat64(metrics.Created) != 1 {
				t.Fatal("created counter not incremented")
			}
		})
	}
}

func TestService_CreateIgnoresClientTotal(t *testing.T) {
	repo := &mockRepo{createFn: func(_ context.Context, o orders.Order) (orders.Order, error) { return o, nil }}
	svc, _ := newTestService(repo, orders.NewStore(), &mockPublisher{})

	in := checkoutInput()
	in.Items = orders.Items{{ProductID: "p1", Quantity: 3, Price: 100}}
	got, _, err := svc.Create(context.Background(), in)

	if err != nil || got.TotalAmount != 300 {
		t.Fatalf("want total 300, got %d (%v)", got.TotalAmount, err)
	}
}

func TestService_UpdateStatus(t *testing.T) {
	stored := orders.Order{ID: "o1", Email: "a@example.com", Status: orders.StatusPending}

	tests := []struct {
		name    string
		id      string
		status  orders.Status
		wantErr error
	}{
		{name: "forward", id: "o1", status: orders.StatusShipped},
		{name: "backwards is allowed", id: "o1", status: orders.StatusPending},
		{name: "cancelled", id: "o1", status: orders.StatusCancelled},
		{name: "unknown status", id: "o1", status: "lost", wantErr: orders.ErrInvalidStatus},
		{name: "missing order", id: "o2", status: orders.StatusShipped, wantErr: orders.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{
				getFn: func(_ context.Context, id string) (orders.Order, error) {
					if id != stored.ID {
						return orders.Order{}, orders.ErrNotFound
					}
					return stored, nil
				},
				updateFn: func(_ context.Context, o orders.Order) (orders.Order, error) { return o, nil },
			}
			pub := &mockPublisher{}
			svc, metrics := newTestService(repo, orders.NewStore(), pub)

			got, _, err := svc.UpdateStatus(context.Background(), tt.id, tt.status)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				if testutil.ToFloat64(metrics.Fallbacks.WithLabelValues("update_order")) != 0 {
					t.Fatal("domain errors must not use the fallback")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.status {
				t.Fatalf("want %q, got %q", tt.status, got.Status)
			}
			if len(pub.events) != 1 || pub.events[0].EventType != orders.EventStatusChanged || pub.events[0].Status != tt.status {
				t.Fatalf("unexpected events: %+v", pub.events)
			}
		})
	}
}

func TestService_Track(t *testing.T) {
	store := orders.NewStore()
	store.Insert(orders.Order{ID: "old", Email: "a@example.com", CreatedAt: time.Unix(100, 0)})
	store.Insert(orders.Order{ID: "new", Email: "a@example.com", CreatedAt: time.Unix(200, 0)})
	svc, metrics := newTestService(downRepo(), store, &mockPublisher{})
	ctx := context.Background()

	if _, _, err := svc.Track(ctx, orders.TrackQuery{}); !errors.Is(err, orders.ErrMissingLookup) {
		t.Fatalf("want ErrMissingLookup, got %v", err)
	}

	got, usedFallback, err := svc.Track(ctx, orders.TrackQuery{Email: " A@example.com "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "new" || !usedFallback {
		t.Fatalf("want most recent order from fallback, got %q %v", got.ID, usedFallback)
	}

	if _, _, err := svc.Track(ctx, orders.TrackQuery{OrderID: "nope"}); !errors.Is(err, orders.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if testutil.ToFloat64(metrics.Fallbacks.WithLabelValues("track_order")) != 2 {
		t.Fatal("want two fallback activations")
	}
}

func TestService_ListAndGet(t *testing.T) {
	repo := &mockRepo{
		listFn: func(context.Context) ([]orders.Order, error) {
			return []orders.Order{{ID: "o2"}, {ID: "o1"}}, nil
		},
		getFn: func(_ context.Context, id string) (orders.Order, error) {
			return orders.Order{}, orders.ErrNotFound
		},
	}
	svc, _ := newTestService(repo, orders.NewStore(), &mockPublisher{})

	list, usedFallback, err := svc.List(context.Background())
	if err != nil || usedFallback || len(list) != 2 {
		t.Fatalf("unexpected list: %v %v %v", list, usedFallback, err)
	}

	if _, _, err := svc.Get(context.Background(), "o9"); !errors.Is(err, orders.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestService_PublishFailureIsLogged(t *testing.T) {
	repo := &mockRepo{createFn: func(_ context.Context, o orders.Order) (orders.Order, error) { return o, nil }}
	svc, _ := newTestService(repo, orders.NewStore(), &mockPublisher{err: errors.New("broker down")})

	if _, _, err := svc.Create(context.Background(), checkoutInput()); err != nil {
		t.Fatalf("publish failure must not fail checkout: %v", err)
	}
}
