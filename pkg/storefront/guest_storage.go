package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GuestStorage keeps the cart of a visitor who is not logged in. Load on an
// empty storage returns an empty cart and no error.
type GuestStorage interface {
	Load(ctx context.Context) (Cart, error)
	Save(ctx context.Context, cart Cart) error
	Clear(ctx context.Context) error
}

// MemoryGuestStorage holds the guest cart in process memory.
type MemoryGuestStorage struct {
	mu   sync.Mutex
	cart Cart
}

func NewMemoryGuestStorage() *MemoryGuestStorage {
	return &MemoryGuestStorage{}
}

func (s *MemoryGuestStorage) Load(_ context.Context) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.clone(), nil
}

func (s *MemoryGuestStorage) Save(_ context.Context, cart Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cart.clone()
	return nil
}

func (s *MemoryGuestStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
	return nil
}

const guestCartKeyPrefix = "storefront:guest_cart:"

// RedisGuestStorage stores one device's guest cart as a JSON string. Every
// save refreshes the TTL; zero TTL keeps the key forever.
type RedisGuestStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisGuestStorage(client *redis.Client, deviceID string, ttl time.Duration) *RedisGuestStorage {
	return &RedisGuestStorage{
		client: client,
		key:    guestCartKeyPrefix + deviceID,
		ttl:    ttl,
	}
}

func (s *RedisGuestStorage) Load(ctx context.Context) (Cart, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guest cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	if cart == nil {
		cart = Cart{}
	}
	return cart, nil
}

func (s *RedisGuestStorage) Save(ctx context.Context, cart Cart) error {
	if cart == nil {
		cart = Cart{}
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save guest cart: %w", err)
	}
	return nil
}

func (s *RedisGuestStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	return nil
}
