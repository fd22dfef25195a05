package service

import (
	"context"
	"testing"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWishlistServiceTest(t *testing.T) (WishlistService, *model.Product) {
	testDB := setupServiceTestDB(t)
	product := createTestProduct(t, testDB, "vase", "20.00", "18.00")
	svc := NewWishlistService(repository.NewWishlistRepository(testDB), repository.NewProductRepository(testDB))
	return svc, product
}

func TestWishlistService_AddAndList(t *testing.T) {
	svc, product := setupWishlistServiceTest(t)
	ctx := context.Background()

	items, err := svc.ListWishlistItems(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, svc.AddItem(ctx, "user_1", product.ID))

	items, err = svc.ListWishlistItems(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.WishlistItemStatusAvailable, items[0].Status)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "vase", items[0].Product.Slug)
	assert.Len(t, items[0].Product.Images, 1)
}

func TestWishlistService_DuplicateAddFails(t *testing.T) {
	svc, product := setupWishlistServiceTest(t)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, "user_1", product.ID))
	err := svc.AddItem(ctx, "user_1", product.ID)
	assert.ErrorIs(t, err, ErrAlreadyInWishlist)

	items, err := svc.ListWishlistItems(ctx, "user_1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestWishlistService_AddMissingProduct(t *testing.T) {
	svc, _ := setupWishlistServiceTest(t)

	err := svc.AddItem(context.Background(), "user_1", 4242)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestWishlistService_IsInWishlistAndRemove(t *testing.T) {
	svc, product := setupWishlistServiceTest(t)
	ctx := context.Background()

	in, err := svc.IsInWishlist(ctx, "user_1", product.ID)
	require.NoError(t, err)
	assert.False(t, in, "no wishlist yet")

	require.NoError(t, svc.AddItem(ctx, "user_1", product.ID))
	in, err = svc.IsInWishlist(ctx, "user_1", product.ID)
	require.NoError(t, err)
	assert.True(t, in)

	require.NoError(t, svc.RemoveItem(ctx, "user_1", product.ID))
	in, err = svc.IsInWishlist(ctx, "user_1", product.ID)
	require.NoError(t, err)
	assert.False(t, in)

	assert.NoError(t, svc.RemoveItem(ctx, "nobody", product.ID))
}

func TestWishlistService_GetOrCreateWishlist(t *testing.T) {
	svc, _ := setupWishlistServiceTest(t)
	ctx := context.Background()

	first, err := svc.GetOrCreateWishlist(ctx, "user_9")
	require.NoError(t, err)
	second, err := svc.GetOrCreateWishlist(ctx, "user_9")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.GetOrCreateWishlist(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
