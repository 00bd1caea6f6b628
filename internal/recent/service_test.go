package recent

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/product"
)

func seedCatalog(n int) *product.Service {
	ps := make([]product.Product, 0, n)
	for i := 1; i <= n; i++ {
		ps = append(ps, product.Product{ID: uint(i), Name: "p", Slug: "p" + string(rune('a'+i)), Price: decimal.NewFromInt(1), Stock: 1})
	}
	return product.NewService(product.NewInMemoryRepository(ps), nil, nil)
}

func TestRecord_KeepsTwentyNewest(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	svc := NewService(repo, seedCatalog(25))

	clock := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for id := uint(1); id <= 25; id++ {
		require.NoError(t, svc.Record(ctx, 1, id))
	}
	require.NoError(t, svc.Record(ctx, 2, 1))

	items, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, Keep)
	assert.Equal(t, uint(25), items[0].ProductID)
	assert.Equal(t, uint(6), items[Keep-1].ProductID)

	// viewing again moves the product to the front without adding a row
	require.NoError(t, svc.Record(ctx, 1, 10))
	items, err = svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, Keep)
	assert.Equal(t, uint(10), items[0].ProductID)

	other, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, other, 1, "other users are not trimmed")
}

func TestRecord_UnknownProduct(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), seedCatalog(1))
	err := svc.Record(context.Background(), 1, 99)
	assert.ErrorIs(t, err, product.ErrNotFound)
}
