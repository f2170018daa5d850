package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ikkim/storefront-backend/pkg/logger"
)

// API is the part of the server surface the Store drives. *Client
// implements it.
type API interface {
	Register(ctx context.Context, name, email, password string) (*UserInfo, error)
	Login(ctx context.Context, email, password string) (*UserInfo, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*UserInfo, error)
	GetCart(ctx context.Context) (Cart, error)
	AddItem(ctx context.Context, productID uint, quantity int) (Cart, error)
	RemoveItem(ctx context.Context, productID uint) (Cart, error)
}

// MergePolicy decides what happens to a guest cart when a user logs in.
type MergePolicy int

const (
	// MergeDiscard drops the guest cart and adopts the server cart.
	MergeDiscard MergePolicy = iota
	// MergeByProduct pushes every guest line to the server before adopting
	// the server cart, so quantities for the same product add up.
	MergeByProduct
)

type StoreOptions struct {
	MergePolicy MergePolicy
	// ReconcileOnFailure re-fetches the server cart after a failed cart
	// call. When false the optimistic local cart is kept as is and may
	// diverge from the server.
	ReconcileOnFailure bool
	Logger             *logger.Logger
}

// Store is the client side session and cart state. The cart comes from the
// user record while logged in and from guest storage otherwise.
type Store struct {
	api   API
	guest GuestStorage
	opts  StoreOptions
	log   *logger.Logger

	mu   sync.RWMutex
	user *UserInfo
	cart Cart
}

// NewStore starts logged out with the cart found in guest storage.
func NewStore(ctx context.Context, api API, guest GuestStorage, opts StoreOptions) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}

	s := &Store{
		api:   api,
		guest: guest,
		opts:  opts,
		log:   log,
	}
	if err := s.SetUser(ctx, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// User returns a copy of the logged in user, or nil.
func (s *Store) User() *UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	u.Cart = u.Cart.clone()
	return &u
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.clone()
}

func (s *Store) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Subtotal()
}

func (s *Store) TotalQuantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.TotalQuantity()
}

// SetUser applies a session transition. With a user the cart becomes the
// user's server cart and guest storage is cleared. With nil the cart is
// reloaded from guest storage.
func (s *Store) SetUser(ctx context.Context, user *UserInfo) error {
	if user == nil {
		cart, err := s.guest.Load(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.user = nil
		s.cart = cart
		s.mu.Unlock()
		return nil
	}

	cart := user.Cart.clone()
	if err := s.guest.Clear(ctx); err != nil {
		s.log.Warn("Failed to clear guest cart", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}

	u := *user
	u.Cart = cart.clone()
	s.mu.Lock()
	s.user = &u
	s.cart = cart
	s.mu.Unlock()
	return nil
}

// Restore resumes the session the API client still holds, if any. Without
// one the store stays on the guest cart.
func (s *Store) Restore(ctx context.Context) error {
	user, err := s.api.Me(ctx)
	if errors.Is(err, ErrUnauthorized) {
		return s.SetUser(ctx, nil)
	}
	if err != nil {
		return err
	}
	return s.SetUser(ctx, user)
}

func (s *Store) Register(ctx context.Context, name, email, password string) error {
	return s.authenticate(ctx, func() (*UserInfo, error) {
		return s.api.Register(ctx, name, email, password)
	})
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, func() (*UserInfo, error) {
		return s.api.Login(ctx, email, password)
	})
}

func (s *Store) authenticate(ctx context.Context, call func() (*UserInfo, error)) error {
	s.mu.RLock()
	guestCart := s.cart.clone()
	s.mu.RUnlock()

	user, err := call()
	if err != nil {
		return err
	}

	if s.opts.MergePolicy == MergeByProduct && len(guestCart) > 0 {
		user.Cart = s.mergeGuestCart(ctx, user, guestCart)
	}
	return s.SetUser(ctx, user)
}

// mergeGuestCart pushes guest lines one by one. A line the server rejects
// is logged and skipped.
func (s *Store) mergeGuestCart(ctx context.Context, user *UserInfo, guestCart Cart) Cart {
	merged := user.Cart
	for _, line := range guestCart {
		// the server takes at most MaxLineQuantity per request
		for remaining := line.Quantity; remaining > 0; remaining -= MaxLineQuantity {
			cart, err := s.api.AddItem(ctx, line.Product, min(remaining, MaxLineQuantity))
			if err != nil {
				s.log.Warn("Failed to merge guest cart line", map[string]interface{}{
					"user_id":    user.ID,
					"product_id": line.Product,
					"error":      err.Error(),
				})
				break
			}
			merged = cart
		}
	}
	return merged
}

// Logout ends the session locally even if the server call fails.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn("Logout request failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return s.SetUser(ctx, nil)
}

// AddToCart updates the local cart first, then the server when logged in.
// A server error is logged and returned; the local change is kept.
// Quantities outside [1, MaxLineQuantity] are rejected before anything
// changes.
func (s *Store) AddToCart(ctx context.Context, item Item, quantity int) error {
	if quantity < 1 || quantity > MaxLineQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d, got %d", ErrInvalidRequest, MaxLineQuantity, quantity)
	}
	return s.mutate(ctx, item.ID,
		func(c Cart) Cart { return c.Add(lineFromItem(item, quantity)) },
		func() error {
			_, err := s.api.AddItem(ctx, item.ID, quantity)
			return err
		},
	)
}

func (s *Store) RemoveFromCart(ctx context.Context, productID uint) error {
	return s.mutate(ctx, productID,
		func(c Cart) Cart { return c.Remove(productID) },
		func() error {
			_, err := s.api.RemoveItem(ctx, productID)
			return err
		},
	)
}

// ClearCart empties the local cart only. The server cart of a logged in
// user is left untouched.
func (s *Store) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, 0, func(Cart) Cart { return Cart{} }, nil)
}

func (s *Store) mutate(ctx context.Context, productID uint, apply func(Cart) Cart, remote func() error) error {
	s.mu.Lock()
	s.cart = apply(s.cart)
	authenticated := s.user != nil
	snapshot := s.cart.clone()
	if authenticated {
		s.user.Cart = snapshot.clone()
	}
	s.mu.Unlock()

	if !authenticated {
		return s.guest.Save(ctx, snapshot)
	}
	if remote == nil {
		return nil
	}

	err := remote()
	if err == nil {
		return nil
	}

	s.log.Error("Cart sync with server failed", err, map[string]interface{}{
		"product_id": productID,
	})
	if s.opts.ReconcileOnFailure {
		s.reconcile(ctx)
	}
	return err
}

func (s *Store) reconcile(ctx context.Context) {
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		s.log.Error("Cart reconcile failed", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	s.cart = cart.clone()
	s.user.Cart = cart.clone()
}
