package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"photo-inventory/internal/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductNameTaken = errors.New("product with this name already exists")
	ErrPriceOutOfRange  = errors.New("product price out of range")
)

// NameScope selects which products must not share a name
type NameScope int

const (
	// NamesPerOwner only stops a user reusing one of their own product names
	NamesPerOwner NameScope = iota
	// NamesGlobal stops any two products sharing a name
	NamesGlobal
)

// ProductRepository defines the interface for product data access.
// Create and Update return ErrProductNameTaken when the name is already used
// within scope.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product, scope NameScope) error
	Update(ctx context.Context, product *domain.Product, scope NameScope) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDAndOwner(ctx context.Context, id, userID int64) (*domain.Product, error)
	ListByOwner(ctx context.Context, userID int64) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, qty, user_id, created_at, updated_at`

// Create inserts a new product and fills in the generated id, the stored
// price and the timestamps
func (r *productRepository) Create(ctx context.Context, product *domain.Product, scope NameScope) error {
	return r.withNameLock(ctx, product.Name, func(tx *sql.Tx) error {
		if err := checkNameFree(ctx, tx, product, scope); err != nil {
			return err
		}

		query := `
			INSERT INTO products (name, description, price, qty, user_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, price, created_at, updated_at
		`

		err := tx.QueryRowContext(
			ctx,
			query,
			product.Name,
			product.Description,
			product.Price,
			product.Qty,
			product.UserID,
		).Scan(&product.ID, &product.Price, &product.CreatedAt, &product.UpdatedAt)

		if err != nil {
			if isUniqueViolation(err, "products_user_id_name_key") {
				return ErrProductNameTaken
			}
			if isNumericOverflow(err) {
				return ErrPriceOutOfRange
			}
			return fmt.Errorf("failed to create product: %w", err)
		}

		return nil
	})
}

// Update overwrites name, description, price and qty of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product, scope NameScope) error {
	return r.withNameLock(ctx, product.Name, func(tx *sql.Tx) error {
		if err := checkNameFree(ctx, tx, product, scope); err != nil {
			return err
		}

		query := `
			UPDATE products
			SET name = $2, description = $3, price = $4, qty = $5
			WHERE id = $1
			RETURNING price, updated_at
		`

		err := tx.QueryRowContext(
			ctx,
			query,
			product.ID,
			product.Name,
			product.Description,
			product.Price,
			product.Qty,
		).Scan(&product.Price, &product.UpdatedAt)

		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			if isUniqueViolation(err, "products_user_id_name_key") {
				return ErrProductNameTaken
			}
			if isNumericOverflow(err) {
				return ErrPriceOutOfRange
			}
			return fmt.Errorf("failed to update product: %w", err)
		}

		return nil
	})
}

// withNameLock runs fn in a transaction holding an advisory lock on name, so
// the name check and the write it guards cannot interleave with another
// writer of the same name.
func (r *productRepository) withNameLock(ctx context.Context, name string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, name); err != nil {
		return fmt.Errorf("failed to lock product name: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// checkNameFree fails with ErrProductNameTaken when another product uses
// product.Name within scope
func checkNameFree(ctx context.Context, tx *sql.Tx, product *domain.Product, scope NameScope) error {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM products
			WHERE name = $1 AND id <> $2 AND ($3::BIGINT IS NULL OR user_id = $3)
		)
	`

	var owner *int64
	if scope == NamesPerOwner {
		owner = &product.UserID
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, query, product.Name, product.ID, owner).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check product name: %w", err)
	}
	if exists {
		return ErrProductNameTaken
	}
	return nil
}

// Delete removes a product from the database
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID regardless of owner
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	return scanProduct(r.db.QueryRowContext(ctx, query, id))
}

// FindByIDAndOwner retrieves a product only if userID owns it
func (r *productRepository) FindByIDAndOwner(ctx context.Context, id, userID int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND user_id = $2`

	return scanProduct(r.db.QueryRowContext(ctx, query, id, userID))
}

// ListByOwner retrieves every product owned by userID ordered by id
func (r *productRepository) ListByOwner(ctx context.Context, userID int64) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE user_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Qty,
		&product.UserID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	return product, nil
}
