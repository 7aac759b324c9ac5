package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
	testhelpers "github.com/polkiloo/trattoria/internal/test"
)

type menuCacheStub struct {
	cached      []model.Product
	loads       int
	invalidated int
}

func (m *menuCacheStub) Menu(ctx context.Context, load func(ctx context.Context) ([]model.Product, error)) ([]model.Product, error) {
	if m.cached != nil {
		return m.cached, nil
	}
	m.loads++
	products, err := load(ctx)
	if err != nil {
		return nil, err
	}
	m.cached = products
	return products, nil
}

func (m *menuCacheStub) Invalidate(context.Context) {
	m.invalidated++
	m.cached = nil
}

func TestProductUseCaseWithoutCache(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := NewProductUseCase(store, nil)

	product, err := uc.Create(context.Background(), " Carbonara ", "pasta", decimal.RequireFromString("14.499"), true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.Name != "Carbonara" || !product.Price.Equal(decimal.RequireFromString("14.5")) {
		t.Fatalf("unexpected product: %+v", product)
	}

	cases := []struct {
		name  string
		title string
		price decimal.Decimal
		want  error
	}{
		{"no name", " ", decimal.NewFromInt(1), domainErrors.ErrInvalidInput},
		{"negative price", "Water", decimal.NewFromInt(-1), domainErrors.ErrInvalidInput},
		{"duplicate", "Carbonara", decimal.NewFromInt(9), domainErrors.ErrAlreadyExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.Create(context.Background(), tc.title, "", tc.price, true); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	updated, err := uc.SetAvailability(context.Background(), product.ID, false)
	if err != nil || updated.Available {
		t.Fatalf("unexpected availability update %+v err=%v", updated, err)
	}
	if _, err := uc.SetAvailability(context.Background(), 999, true); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	menu, err := uc.List(context.Background())
	if err != nil || len(menu) != 1 || menu[0].Available {
		t.Fatalf("unexpected menu %+v err=%v", menu, err)
	}
}

func TestProductUseCaseUsesCache(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	cache := &menuCacheStub{}
	uc := NewProductUseCase(store, cache)

	if _, err := uc.Create(context.Background(), "Tiramisu", "dessert", decimal.NewFromInt(7), true); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 3; i++ {
		menu, err := uc.List(context.Background())
		if err != nil || len(menu) != 1 {
			t.Fatalf("list: %+v err=%v", menu, err)
		}
	}
	if cache.loads != 1 {
		t.Fatalf("expected a single load, got %d", cache.loads)
	}

	product := cache.cached[0]
	if _, err := uc.SetAvailability(context.Background(), product.ID, false); err != nil {
		t.Fatalf("set availability: %v", err)
	}
	if cache.invalidated != 2 {
		t.Fatalf("expected invalidation on create and update, got %d", cache.invalidated)
	}
	menu, _ := uc.List(context.Background())
	if menu[0].Available || cache.loads != 2 {
		t.Fatalf("expected fresh menu after invalidation, got %+v loads=%d", menu, cache.loads)
	}
}
