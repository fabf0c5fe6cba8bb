package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sonicpods/internal/catalog"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	healthCheckTimeout = 2 * time.Second

	pqUniqueViolation  = "23505"
	pqInvalidTextInput = "22P02"
	slugConstraint     = "products_slug_key"
)

const productColumns = `
	id, slug, name, description, price, discount, stock, brand, type,
	category_id, features, images, image, colors, in_stock,
	meta_title, meta_description, meta_keywords, og_title, og_description,
	og_type, twitter_title, twitter_description, seo_title, seo_description,
	schema_description, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List runs the primary predicates and ordering of f. Price bounds and
// pagination are left to the caller.
func (r *PostgresRepository) List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	query, args := buildListQuery(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	list := make([]catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

// ListMissingSEO returns products lacking a meta title or description,
// oldest first.
func (r *PostgresRepository) ListMissingSEO(ctx context.Context) ([]catalog.Product, error) {
	query := `SELECT` + productColumns + `
		FROM products
		WHERE meta_title = '' OR meta_description = ''
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products missing seo: %w", err)
	}
	defer rows.Close()

	list := make([]catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return list, nil
}

// Get resolves key as an id when it looks like a UUID and as a slug
// otherwise.
func (r *PostgresRepository) Get(ctx context.Context, key string) (catalog.Product, error) {
	if isUUID(key) {
		return r.GetByID(ctx, key)
	}
	return r.GetBySlug(ctx, key)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (catalog.Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return catalog.Product{}, mapError(fmt.Sprintf("get product %s", id), err)
	}
	return p, nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE slug = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return catalog.Product{}, mapError(fmt.Sprintf("get product by slug %q", slug), err)
	}
	return p, nil
}

// SlugExists satisfies slug.Lookup.
func (r *PostgresRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM products WHERE slug = $1 AND ($2 = '' OR id::text <> $2)
	)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	query := `
		INSERT INTO products (
			id, slug, name, description, price, discount, stock, brand, type,
			category_id, features, images, image, colors, in_stock,
			meta_title, meta_description, meta_keywords, og_title, og_description,
			og_type, twitter_title, twitter_description, seo_title, seo_description,
			schema_description
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		RETURNING created_at, updated_at
	`

	args := append([]any{p.ID}, writeArgs(p)...)
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return catalog.Product{}, mapError("insert product", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	query := `
		UPDATE products SET
			slug = $2, name = $3, description = $4, price = $5, discount = $6,
			stock = $7, brand = $8, type = $9, category_id = $10, features = $11,
			images = $12, image = $13, colors = $14, in_stock = $15,
			meta_title = $16, meta_description = $17, meta_keywords = $18,
			og_title = $19, og_description = $20, og_type = $21,
			twitter_title = $22, twitter_description = $23, seo_title = $24,
			seo_description = $25, schema_description = $26,
			updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	args := append([]any{p.ID}, writeArgs(p)...)
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return catalog.Product{}, mapError(fmt.Sprintf("update product %s", p.ID), err)
	}
	return p, nil
}

// RenameSlugs applies every change in one transaction. Uniqueness is
// checked at commit, so slugs may be swapped between products.
func (r *PostgresRepository) RenameSlugs(ctx context.Context, changes []catalog.SlugChange) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin slug rename: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SET CONSTRAINTS `+slugConstraint+` DEFERRED`); err != nil {
		return fmt.Errorf("defer slug constraint: %w", err)
	}

	for _, c := range changes {
		result, err := tx.ExecContext(ctx, `UPDATE products SET slug = $2, updated_at = NOW() WHERE id = $1`, c.ID, c.NewSlug)
		if err != nil {
			return mapError(fmt.Sprintf("rename product %s", c.ID), err)
		}
		if affected, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		} else if affected == 0 {
			return fmt.Errorf("rename product %s: %w", c.ID, catalog.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapError("commit slug rename", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError(fmt.Sprintf("delete product %s", id), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return catalog.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, description FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	list := make([]catalog.Category, 0)
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (catalog.Product, error) {
	var (
		p          catalog.Product
		categoryID sql.NullString
		images     pq.StringArray
		colors     pq.StringArray
		keywords   pq.StringArray
		productTyp string
	)
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Price, &p.Discount, &p.Stock,
		&p.Brand, &productTyp, &categoryID, &p.Features, &images, &p.Image,
		&colors, &p.InStock,
		&p.SEO.MetaTitle, &p.SEO.MetaDescription, &keywords,
		&p.SEO.OGTitle, &p.SEO.OGDescription, &p.SEO.OGType,
		&p.SEO.TwitterTitle, &p.SEO.TwitterDescription,
		&p.SEO.Title, &p.SEO.Description, &p.SEO.SchemaDescription,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return catalog.Product{}, err
	}
	p.Type = catalog.ProductType(productTyp)
	p.CategoryID = categoryID.String
	p.Images = []string(images)
	p.Colors = []string(colors)
	if len(keywords) > 0 {
		p.SEO.MetaKeywords = []string(keywords)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, nil
}

// writeArgs returns $2..$26 of the insert and update statements.
func writeArgs(p catalog.Product) []any {
	var categoryID sql.NullString
	if p.CategoryID != "" {
		categoryID = sql.NullString{String: p.CategoryID, Valid: true}
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	keywords := p.SEO.MetaKeywords
	if keywords == nil {
		keywords = []string{}
	}
	return []any{
		p.Slug, p.Name, p.Description, p.Price, p.Discount, p.Stock, p.Brand,
		string(p.Type), categoryID, p.Features, pq.StringArray(images), p.Image,
		pq.StringArray(p.Colors), p.InStock,
		p.SEO.MetaTitle, p.SEO.MetaDescription, pq.StringArray(keywords),
		p.SEO.OGTitle, p.SEO.OGDescription, p.SEO.OGType,
		p.SEO.TwitterTitle, p.SEO.TwitterDescription,
		p.SEO.Title, p.SEO.Description, p.SEO.SchemaDescription,
	}
}

func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			if pqErr.Constraint == slugConstraint {
				return fmt.Errorf("%s: %w", op, catalog.ErrSlugConflict)
			}
		case pqInvalidTextInput:
			return catalog.ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUUID(key string) bool {
	return len(key) == 36 && uuid.Validate(key) == nil
}
