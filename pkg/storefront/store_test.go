package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI keeps one account's server cart in memory.
type fakeAPI struct {
	mu         sync.Mutex
	serverCart Cart
	items      map[uint]Item
	failCart   bool
	addCalls   int
	session    bool
}

var errBoom = errors.New("boom")

func newFakeAPI(items ...Item) *fakeAPI {
	f := &fakeAPI{items: map[uint]Item{}, serverCart: Cart{}}
	for _, item := range items {
		f.items[item.ID] = item
	}
	return f
}

func (f *fakeAPI) user() *UserInfo {
	return &UserInfo{ID: 1, Name: "Ann", Email: "ann@x.com", Cart: f.serverCart.clone(), Token: "t"}
}

func (f *fakeAPI) Register(_ context.Context, _, _, _ string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = true
	return f.user(), nil
}

func (f *fakeAPI) Login(_ context.Context, _, password string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if password != "pw123" {
		return nil, &APIError{Status: 401, Code: "AUTH_INVALID_CREDENTIALS"}
	}
	f.session = true
	return f.user(), nil
}

func (f *fakeAPI) Logout(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = false
	return nil
}

func (f *fakeAPI) Me(_ context.Context) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.session {
		return nil, &APIError{Status: 401, Code: "AUTH_UNAUTHORIZED"}
	}
	u := f.user()
	u.Token = ""
	return u, nil
}

func (f *fakeAPI) GetCart(_ context.Context) (Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.serverCart.clone(), nil
}

func (f *fakeAPI) AddItem(_ context.Context, productID uint, quantity int) (Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.failCart {
		return nil, errBoom
	}
	if quantity < 1 || quantity > MaxLineQuantity {
		return nil, &APIError{Status: 400, Code: "VALIDATION_INVALID_RANGE"}
	}
	item, ok := f.items[productID]
	if !ok {
		return nil, &APIError{Status: 404, Code: "ITEM_NOT_FOUND"}
	}
	f.serverCart = f.serverCart.Add(lineFromItem(item, quantity))
	return f.serverCart.clone(), nil
}

func (f *fakeAPI) RemoveItem(_ context.Context, productID uint) (Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCart {
		return nil, errBoom
	}
	f.serverCart = f.serverCart.Remove(productID)
	return f.serverCart.clone(), nil
}

var (
	itemA = Item{ID: 1, Name: "Novel", Price: 5, ImageURL: "/images/novel.jpg"}
	itemB = Item{ID: 2, Name: "Pen", Price: 1.5}
)

func newTestStore(t *testing.T, api API, guest GuestStorage, opts StoreOptions) *Store {
	opts.Logger = logger.Nop()
	store, err := NewStore(context.Background(), api, guest, opts)
	require.NoError(t, err)
	return store
}

func TestStore_GuestCartThenLoginDiscards(t *testing.T) {
	ctx := context.Background()
	guest := NewMemoryGuestStorage()
	store := newTestStore(t, newFakeAPI(itemA), guest, StoreOptions{})

	require.NoError(t, store.AddToCart(ctx, itemA, 2))
	assert.Len(t, store.Cart(), 1)
	assert.Equal(t, 2, store.Cart()[0].Quantity)
	assert.Equal(t, 10.0, store.Subtotal())

	saved, err := guest.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Cart(), saved)

	require.NoError(t, store.Login(ctx, "ann@x.com", "pw123"))
	assert.True(t, store.IsAuthenticated())
	assert.Empty(t, store.Cart())

	saved, err = guest.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestStore_StartsFromGuestStorage(t *testing.T) {
	ctx := context.Background()
	guest := NewMemoryGuestStorage()
	require.NoError(t, guest.Save(ctx, Cart{lineFromItem(itemB, 4)}))

	store := newTestStore(t, newFakeAPI(), guest, StoreOptions{})
	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.User())
	assert.Equal(t, 4, store.TotalQuantity())
}

func TestStore_LoginFailureKeepsGuestState(t *testing.T) {
	ctx := context.Background()
	guest := NewMemoryGuestStorage()
	store := newTestStore(t, newFakeAPI(itemA), guest, StoreOptions{})
	require.NoError(t, store.AddToCart(ctx, itemA, 1))

	err := store.Login(ctx, "ann@x.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, store.IsAuthenticated())
	assert.Len(t, store.Cart(), 1)
}

func TestStore_LoginAdoptsServerCart(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(itemA, itemB)
	api.serverCart = Cart{lineFromItem(itemB, 3)}

	store := newTestStore(t, api, NewMemoryGuestStorage(), StoreOptions{})
	require.NoError(t, store.AddToCart(ctx, itemA, 1))
	require.NoError(t, store.Login(ctx, "ann@x.com", "pw123"))

	assert.Equal(t, Cart{lineFromItem(itemB, 3)}, store.Cart())
	assert.Equal(t, store.Cart(), store.User().Cart)
}

func TestStore_MergeByProduct(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(itemA, itemB)
	api.serverCart = Cart{lineFromItem(itemA, 1)}

	store := newTestStore(t, api, NewMemoryGuestStorage(), StoreOptions{MergePolicy: MergeByProduct})
	require.NoError(t, store.AddToCart(ctx, itemA, 2))
	require.NoError(t, store.AddToCart(ctx, itemB, 1))
	require.NoError(t, store.AddToCart(ctx, Item{ID: 99, Name: "Gone"}, 1))

	require.NoError(t, store.Login(ctx, "ann@x.com", "pw123"))

	cart := store.Cart()
	require.Len(t, cart, 2)
	assert.Equal(t, 3, cart[0].Quantity)
	assert.Equal(t, itemB.ID, cart[1].Product)
	assert.Equal(t, api.serverCart, cart)
}

func TestStore_AuthenticatedMutationsReachServer(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(itemA, itemB)
	store := newTestStore(t, api, NewMemoryGuestStorage(), StoreOptions{})
	require.NoError(t, store.Login(ctx, "ann@x.com", "pw123"))

	require.NoError(t, store.AddToCart(ctx, itemA, 2))
	require.NoError(t, store.AddToCart(ctx, itemA, 1))
	require.NoError(t, store.AddToCart(ctx, itemB, 1))
	require.NoError(t, store.RemoveFromCart(ctx, itemB.ID))

	assert.Equal(t, api.serverCart, store.Cart())
	assert.Equal(t, 3, store.Cart()[0].Quantity)
}

func TestStore_FailedSyncIsNotRolledBack(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(itemA)
	store := newTestStore(t, api, NewMemoryGuestStorage(), StoreOptions{})
	require.NoError(t, store.Login(ctx, "ann@x.com", "pw123"))

	api.failCart = true
	err := store.AddToCart(ctx, itemA, 2)
	assert.ErrorIs(t, err, errBoom)

	assert.Len(t, store.Cart(), 1)
	assert.Empty(t, api.serverCart)
}

func TestStore_ReconcileOnFailure(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(itemA)
	api.serverCart = Cart{lineFromItem(itemA, 1)}
	store := newTestStore(t, api, NewMemoryGuestStorage(), StoreOptions{ReconcileOnFailure: true})
	require.NoError(t, store.Login(ctx, "ann@x.com", "pw123"))

	api.failCart = true
	err := store.RemoveFromCart(ctx, itemA.ID)
	assert.ErrorIs(t, err, errBoom)

	assert.Equal(t, api.serverCart, store.Cart())
}

func TestStore_ClearCartIsLocal(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(itemA)
	store := newTestStore(t, api, NewMemoryGuestStorage(), StoreOptions{})
	require.NoError(t, store.Login(ctx, "ann@x.com", "pw123"))
	require.NoError(t, store.AddToCart(ctx, itemA, 2))

	require.NoError(t, store.ClearCart(ctx))
	assert.Empty(t, store.Cart())
	assert.Len(t, api.serverCart, 1)
}

func TestStore_LogoutRestoresGuestCart(t *testing.T) {
	ctx := context.Background()
	guest := NewMemoryGuestStorage()
	store := newTestStore(t, newFakeAPI(itemA), guest, StoreOptions{})
	require.NoError(t, store.Login(ctx, "ann@x.com", "pw123"))
	require.NoError(t, store.AddToCart(ctx, itemA, 2))

	// logged in changes never touch guest storage
	saved, err := guest.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved)

	require.NoError(t, store.Logout(ctx))
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Cart())

	require.NoError(t, store.AddToCart(ctx, itemA, 1))
	saved, err = guest.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestStore_AddToCartRejectsInvalidQuantity(t *testing.T) {
	ctx := context.Background()

	for _, qty := range []int{0, -3, MaxLineQuantity + 1} {
		t.Run(fmt.Sprintf("guest qty %d", qty), func(t *testing.T) {
			guest := NewMemoryGuestStorage()
			store := newTestStore(t, newFakeAPI(itemA), guest, StoreOptions{})
			require.NoError(t, store.AddToCart(ctx, itemA, 1))

			err := store.AddToCart(ctx, itemA, qty)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Equal(t, 1, store.TotalQuantity())
			assert.Equal(t, 5.0, store.Subtotal())

			saved, err := guest.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, Cart{lineFromItem(itemA, 1)}, saved)
		})

		t.Run(fmt.Sprintf("session qty %d", qty), func(t *testing.T) {
			api := newFakeAPI(itemA)
			store := newTestStore(t, api, NewMemoryGuestStorage(), StoreOptions{})
			require.NoError(t, store.Login(ctx, "ann@x.com", "pw123"))

			err := store.AddToCart(ctx, itemA, qty)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Empty(t, store.Cart())
			assert.Zero(t, api.addCalls)
		})
	}

	store := newTestStore(t, newFakeAPI(itemA), NewMemoryGuestStorage(), StoreOptions{})
	require.NoError(t, store.AddToCart(ctx, itemA, MaxLineQuantity))
	assert.Equal(t, MaxLineQuantity, store.TotalQuantity())
}

func TestStore_MergeByProductSplitsLargeLines(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(itemA)
	store := newTestStore(t, api, NewMemoryGuestStorage(), StoreOptions{MergePolicy: MergeByProduct})

	require.NoError(t, store.AddToCart(ctx, itemA, 90))
	require.NoError(t, store.AddToCart(ctx, itemA, 90))
	require.NoError(t, store.AddToCart(ctx, itemA, 30))
	require.Equal(t, 210, store.TotalQuantity())

	require.NoError(t, store.Login(ctx, "ann@x.com", "pw123"))

	assert.Equal(t, 3, api.addCalls)
	require.Len(t, store.Cart(), 1)
	assert.Equal(t, 210, store.Cart()[0].Quantity)
	assert.Equal(t, api.serverCart, store.Cart())
}

func TestStore_Restore(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(itemA)
	api.serverCart = Cart{lineFromItem(itemA, 2)}

	guest := NewMemoryGuestStorage()
	require.NoError(t, guest.Save(ctx, Cart{lineFromItem(itemB, 1)}))

	store := newTestStore(t, api, guest, StoreOptions{})
	require.NoError(t, store.Restore(ctx))
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, Cart{lineFromItem(itemB, 1)}, store.Cart())

	// a session held by the API client from an earlier login
	api.session = true
	require.NoError(t, store.Restore(ctx))
	require.True(t, store.IsAuthenticated())
	assert.Equal(t, "ann@x.com", store.User().Email)
	assert.Equal(t, Cart{lineFromItem(itemA, 2)}, store.Cart())

	saved, err := guest.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved)

	api.session = false
	require.NoError(t, store.Restore(ctx))
	assert.False(t, store.IsAuthenticated())
}
