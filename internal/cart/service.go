package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart operations keyed by the shopper's cart key.
type Service interface {
	Get(ctx context.Context, cartKey string) (Snapshot, error)
	AddItem(ctx context.Context, cartKey string, productID uuid.UUID) (Snapshot, error)
	SetQuantity(ctx context.Context, cartKey string, productID uuid.UUID, quantity int) (Snapshot, error)
	RemoveItem(ctx context.Context, cartKey string, productID uuid.UUID) (Snapshot, error)
	Clear(ctx context.Context, cartKey string) (Snapshot, error)
	Drop(ctx context.Context, cartKey string) error
}

type service struct {
	persister Persister
	products  productLoader
	logg      *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService builds a cart service backed by the provided persister and catalog.
func NewService(persister Persister, products productLoader, logg *logger.Logger) (Service, error) {
	if persister == nil {
		return nil, fmt.Errorf("cart persister required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		persister: persister,
		products:  products,
		logg:      logg,
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// keyLock serializes mutations per cart key so a load-mutate-save cycle never
// loses a concurrent update to the same cart.
func (s *service) keyLock(cartKey string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[cartKey]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[cartKey] = lock
	}
	return lock
}

func (s *service) Get(ctx context.Context, cartKey string) (Snapshot, error) {
	if err := validateCartKey(cartKey); err != nil {
		return Snapshot{}, err
	}
	store, err := s.load(ctx, cartKey)
	if err != nil {
		return Snapshot{}, err
	}
	return store.Snapshot(), nil
}

func (s *service) AddItem(ctx context.Context, cartKey string, productID uuid.UUID) (Snapshot, error) {
	if err := validateCartKey(cartKey); err != nil {
		return Snapshot{}, err
	}
	if productID == uuid.Nil {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	return s.mutate(ctx, cartKey, func(store *Store) {
		store.AddItem(ProductRef{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			ImageURL:  product.ImageURL,
		})
	})
}

func (s *service) SetQuantity(ctx context.Context, cartKey string, productID uuid.UUID, quantity int) (Snapshot, error) {
	if err := validateCartKey(cartKey); err != nil {
		return Snapshot{}, err
	}
	if productID == uuid.Nil {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.mutate(ctx, cartKey, func(store *Store) {
		store.SetQuantity(productID, quantity)
	})
}

func (s *service) RemoveItem(ctx context.Context, cartKey string, productID uuid.UUID) (Snapshot, error) {
	if err := validateCartKey(cartKey); err != nil {
		return Snapshot{}, err
	}
	if productID == uuid.Nil {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.mutate(ctx, cartKey, func(store *Store) {
		store.RemoveItem(productID)
	})
}

func (s *service) Clear(ctx context.Context, cartKey string) (Snapshot, error) {
	if err := validateCartKey(cartKey); err != nil {
		return Snapshot{}, err
	}
	return s.mutate(ctx, cartKey, func(store *Store) {
		store.Clear()
	})
}

// Drop deletes the persisted cart entirely. Used after a successful checkout.
func (s *service) Drop(ctx context.Context, cartKey string) error {
	if err := validateCartKey(cartKey); err != nil {
		return err
	}
	lock := s.keyLock(cartKey)
	lock.Lock()
	defer lock.Unlock()

	if err := s.persister.Delete(ctx, cartKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop cart")
	}
	return nil
}

func (s *service) mutate(ctx context.Context, cartKey string, apply func(store *Store)) (Snapshot, error) {
	lock := s.keyLock(cartKey)
	lock.Lock()
	defer lock.Unlock()

	store, err := s.load(ctx, cartKey)
	if err != nil {
		return Snapshot{}, err
	}

	apply(store)

	data, err := store.Serialize()
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize cart")
	}
	if err := s.persister.Save(ctx, cartKey, data); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return store.Snapshot(), nil
}

func (s *service) load(ctx context.Context, cartKey string) (*Store, error) {
	data, err := s.persister.Load(ctx, cartKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return Restore(data), nil
}

func validateCartKey(cartKey string) error {
	if strings.TrimSpace(cartKey) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart key is required")
	}
	return nil
}
