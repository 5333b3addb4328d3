package service

import (
	"context"
	"fmt"

	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/repo"
)

// StoreService lists pickup locations. The catalog itself is reference
// data maintained elsewhere; the engine only reads it.
type StoreService struct {
	Repo *repo.GormRepo
}

func (s *StoreService) ActiveStores(ctx context.Context) ([]models.Store, error) {
	stores, err := s.Repo.ActiveStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list stores: %v", ErrPersistence, err)
	}
	return stores, nil
}
