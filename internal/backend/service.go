// Package backend is the in-memory domain behind the local mock server: accounts,
// catalog, carts and orders. It exists so the storefront client can be run and
// tested end to end without the production API.
package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/agentfashion/storefront/pkg/config"
	"github.com/agentfashion/storefront/pkg/security"
	"github.com/agentfashion/storefront/pkg/types"
)

type userRecord struct {
	types.User
	PasswordHash string
}

// Params bundles the dependencies required to build a Service.
type Params struct {
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Now      func() time.Time
}

type Service struct {
	jwt    config.JWTConfig
	hasher *security.Hasher
	now    func() time.Time

	mu         sync.RWMutex
	users      map[string]*userRecord
	emails     map[string]string
	revoked    map[string]time.Time
	products   []types.Product
	brands     []types.Brand
	categories []types.Category
	carts      map[string][]types.CartItem
	orders     map[string][]types.Order
}

func NewService(params Params) (*Service, error) {
	if params.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		jwt:     params.JWT,
		hasher:  security.NewHasher(params.Password),
		now:     now,
		users:   map[string]*userRecord{},
		emails:  map[string]string{},
		revoked: map[string]time.Time{},
		carts:   map[string][]types.CartItem{},
		orders:  map[string][]types.Order{},
	}, nil
}

// JWTConfig exposes the token settings used by the auth middleware.
func (s *Service) JWTConfig() config.JWTConfig {
	return s.jwt
}
