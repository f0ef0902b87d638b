package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"glowcart/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines read access to the product catalog. The query
// engine never writes products; catalog ingestion is owned elsewhere.
type ProductRepository interface {
	All(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	p.id, p.name, p.description, p.short_description, p.price, p.compare_at_price,
	p.category, p.sub_category, p.brand, p.stock, p.is_new, p.is_bestseller,
	p.featured, p.rating_average, p.rating_count, p.wishlist_count,
	COALESCE(string_agg(t.tag, ',' ORDER BY t.tag), ''),
	p.created_at, p.published_at
`

const productGroupBy = `
	GROUP BY p.id, p.name, p.description, p.short_description, p.price,
	p.compare_at_price, p.category, p.sub_category, p.brand, p.stock,
	p.is_new, p.is_bestseller, p.featured, p.rating_average, p.rating_count,
	p.wishlist_count, p.created_at, p.published_at
`

// All retrieves the full candidate set with ingredient/attribute tags
// aggregated per product.
func (r *productRepository) All(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN product_tags t ON t.product_id = p.id
		%s
		ORDER BY p.id ASC
	`, productColumns, productGroupBy)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN product_tags t ON t.product_id = p.id
		WHERE p.id = $1
		%s
	`, productColumns, productGroupBy)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListByCategory retrieves all products in the given category.
func (r *productRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN product_tags t ON t.product_id = p.id
		WHERE p.category = $1
		%s
		ORDER BY p.id ASC
	`, productColumns, productGroupBy)

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var compareAt sql.NullInt64
	var subCategory sql.NullString
	var tags string

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.ShortDescription,
		&product.Price,
		&compareAt,
		&product.Category,
		&subCategory,
		&product.Brand,
		&product.Stock,
		&product.IsNew,
		&product.IsBestseller,
		&product.Featured,
		&product.Rating.Average,
		&product.Rating.Count,
		&product.WishlistCount,
		&tags,
		&product.CreatedAt,
		&product.PublishedAt,
	)
	if err != nil {
		return nil, err
	}

	if compareAt.Valid {
		product.CompareAtPrice = &compareAt.Int64
	}
	if subCategory.Valid {
		product.SubCategory = subCategory.String
	}
	if tags != "" {
		product.Tags = strings.Split(tags, ",")
	}

	return product, nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
