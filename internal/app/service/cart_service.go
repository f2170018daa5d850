package service

import (
	"context"
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// CartService mutates the cart embedded in an already loaded user. Each
// mutation persists the whole cart; concurrent writers overwrite each other.
type CartService interface {
	GetCart(user *model.User) model.Cart
	AddItem(ctx context.Context, user *model.User, productID uint, quantity int) (model.Cart, error)
	RemoveItem(ctx context.Context, user *model.User, productID uint) (model.Cart, error)
	ClearCart(ctx context.Context, user *model.User) (model.Cart, error)
}

type cartService struct {
	userRepo repository.UserRepository
	itemRepo repository.ItemRepository
}

func NewCartService(userRepo repository.UserRepository, itemRepo repository.ItemRepository) CartService {
	return &cartService{
		userRepo: userRepo,
		itemRepo: itemRepo,
	}
}

func (s *cartService) GetCart(user *model.User) model.Cart {
	if user.Cart == nil {
		return model.Cart{}
	}
	return user.Cart
}

func (s *cartService) AddItem(ctx context.Context, user *model.User, productID uint, quantity int) (model.Cart, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    user.ID,
		"product_id": productID,
		"quantity":   quantity,
	})

	item, err := s.itemRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: item not found", map[string]interface{}{
				"user_id":    user.ID,
				"product_id": productID,
			})
			return nil, ErrItemNotFound
		}
		logger.Error("Failed to fetch item", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	return s.save(ctx, user, user.Cart.Add(model.NewCartLine(item, quantity)))
}

func (s *cartService) RemoveItem(ctx context.Context, user *model.User, productID uint) (model.Cart, error) {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":    user.ID,
		"product_id": productID,
	})
	return s.save(ctx, user, user.Cart.Remove(productID))
}

func (s *cartService) ClearCart(ctx context.Context, user *model.User) (model.Cart, error) {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": user.ID,
	})
	return s.save(ctx, user, model.Cart{})
}

func (s *cartService) save(ctx context.Context, user *model.User, cart model.Cart) (model.Cart, error) {
	previous := user.Cart
	user.Cart = cart
	if err := s.userRepo.SaveCart(ctx, user); err != nil {
		user.Cart = previous
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to persist cart", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return user.Cart, nil
}
