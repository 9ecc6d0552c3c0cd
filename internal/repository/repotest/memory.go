// Package repotest provides in-memory repositories for tests. All are safe
// for concurrent use.
package repotest

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"photo-inventory/internal/domain"
	"photo-inventory/internal/repository"

	"github.com/google/uuid"
)

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ProductRepository = (*ProductRepository)(nil)
	_ repository.PhotoRepository   = (*PhotoRepository)(nil)
)

// UserRepository is an in-memory repository.UserRepository
type UserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

// NewUserRepository creates an empty UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func (m *UserRepository) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.Email] = &stored
	return nil
}

func (m *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (m *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.ID == id {
			found := *user
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// ProductRepository is an in-memory repository.ProductRepository
type ProductRepository struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*domain.Product
}

// NewProductRepository creates an empty ProductRepository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[int64]*domain.Product)}
}

func (m *ProductRepository) Create(_ context.Context, product *domain.Product, scope repository.NameScope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkWrite(product, scope); err != nil {
		return err
	}
	m.nextID++
	product.ID = m.nextID
	product.Price = roundCents(product.Price)
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *ProductRepository) Update(_ context.Context, product *domain.Product, scope repository.NameScope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if err := m.checkWrite(product, scope); err != nil {
		return err
	}
	product.Price = roundCents(product.Price)
	product.UpdatedAt = time.Now()
	product.CreatedAt = existing.CreatedAt
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

// checkWrite mirrors the column limits and name rules of the products table.
// Callers hold m.mu.
func (m *ProductRepository) checkWrite(product *domain.Product, scope repository.NameScope) error {
	if roundCents(product.Price) > domain.MaxProductPrice {
		return repository.ErrPriceOutOfRange
	}
	for _, p := range m.products {
		if p.Name != product.Name || p.ID == product.ID {
			continue
		}
		if scope == repository.NamesGlobal || p.UserID == product.UserID {
			return repository.ErrProductNameTaken
		}
	}
	return nil
}

func roundCents(price float64) float64 {
	return math.Round(price*100) / 100
}

func (m *ProductRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *ProductRepository) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	found := *p
	return &found, nil
}

func (m *ProductRepository) FindByIDAndOwner(_ context.Context, id, userID int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok || p.UserID != userID {
		return nil, repository.ErrProductNotFound
	}
	found := *p
	return &found, nil
}

func (m *ProductRepository) ListByOwner(_ context.Context, userID int64) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	products := []*domain.Product{}
	for id := int64(1); id <= m.nextID; id++ {
		if p, ok := m.products[id]; ok && p.UserID == userID {
			found := *p
			products = append(products, &found)
		}
	}
	return products, nil
}

// PhotoRepository is an in-memory repository.PhotoRepository
type PhotoRepository struct {
	mu     sync.Mutex
	nextID int64
	photos map[uuid.UUID]*domain.Photo

	// FailNextCreate, when set, is returned once by the next Create
	FailNextCreate error
}

// NewPhotoRepository creates an empty PhotoRepository
func NewPhotoRepository() *PhotoRepository {
	return &PhotoRepository{photos: make(map[uuid.UUID]*domain.Photo)}
}

func (m *PhotoRepository) Create(_ context.Context, photo *domain.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNextCreate != nil {
		err := m.FailNextCreate
		m.FailNextCreate = nil
		return err
	}
	for _, p := range m.photos {
		if p.UUID == photo.UUID || p.Filename == photo.Filename {
			return repository.ErrPhotoAlreadyExists
		}
	}
	m.nextID++
	photo.ID = m.nextID
	photo.CreatedAt = time.Now()
	stored := *photo
	m.photos[photo.UUID] = &stored
	return nil
}

func (m *PhotoRepository) FindByUUID(_ context.Context, id uuid.UUID) (*domain.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.photos[id]
	if !ok {
		return nil, repository.ErrPhotoNotFound
	}
	found := *p
	return &found, nil
}

func (m *PhotoRepository) ListByOwner(_ context.Context, userID int64) ([]*domain.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	photos := []*domain.Photo{}
	for _, p := range m.photos {
		if p.UserID == userID {
			found := *p
			photos = append(photos, &found)
		}
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })
	return photos, nil
}

func (m *PhotoRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.photos[id]; !ok {
		return repository.ErrPhotoNotFound
	}
	delete(m.photos, id)
	return nil
}

// Count returns the number of stored photos
func (m *PhotoRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.photos)
}
