package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"furniture-extractor/internal/types"
)

//go:embed schema.sql
var Schema string

// ErrNotFound is returned when no record matches a lookup
var ErrNotFound = errors.New("product not found")

// UpsertResult reports the stored record and whether the upsert created it
type UpsertResult struct {
	Record  *types.ProductRecord
	Created bool
}

// Store is the durable catalog of canonical product records
type Store interface {
	// Upsert inserts the record or fully replaces the one with the same identity key
	Upsert(ctx context.Context, record *types.ProductRecord) (UpsertResult, error)
	Get(ctx context.Context, id string) (*types.ProductRecord, error)
	GetByKey(ctx context.Context, identityKey string) (*types.ProductRecord, error)
	// List returns records ordered by identity key; an empty vendorID lists all vendors
	List(ctx context.Context, vendorID string, limit int) ([]*types.ProductRecord, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// SQLStore implements Store on SQLite or a remote libSQL database
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the catalog described by config: a remote libSQL database when URL is
// set, otherwise a local SQLite file. The schema is applied on open.
func Open(ctx context.Context, config types.CatalogConfig) (*SQLStore, error) {
	db, err := openDB(config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}
	store, err := NewSQLStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func openDB(config types.CatalogConfig) (*sql.DB, error) {
	if config.URL != "" {
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		dsn := config.URL
		if len(values) > 0 {
			dsn += "?" + values.Encode()
		}
		return sql.Open("libsql", dsn)
	}

	if config.File == "" {
		return nil, fmt.Errorf("a catalog file was not specified")
	}
	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// single writer; see https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if config.File != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// NewSQLStore wraps an open database and applies the schema
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

// SetClock replaces the time source used for timestamps
func (s *SQLStore) SetClock(now func() time.Time) {
	s.now = now
}

const upsertProduct = `
INSERT INTO products (
    id, identity_key, vendor_id, vendor, name, price, sku, category, room_type, style,
    color, material, dimensions, description, source_url, available, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (identity_key) DO UPDATE SET
    vendor_id = excluded.vendor_id,
    vendor = excluded.vendor,
    name = excluded.name,
    price = excluded.price,
    sku = excluded.sku,
    category = excluded.category,
    room_type = excluded.room_type,
    style = excluded.style,
    color = excluded.color,
    material = excluded.material,
    dimensions = excluded.dimensions,
    description = excluded.description,
    source_url = excluded.source_url,
    available = excluded.available,
    updated_at = excluded.updated_at
RETURNING id, created_at`

// Upsert implements Store. The conditional insert is a single statement, so
// concurrent upserts of one identity key never produce two rows; the last write wins.
func (s *SQLStore) Upsert(ctx context.Context, record *types.ProductRecord) (UpsertResult, error) {
	if record == nil || record.IdentityKey == "" {
		return UpsertResult{}, fmt.Errorf("upsert: record without identity key")
	}
	persistErr := func(err error) error {
		return types.PersistenceError{Key: record.IdentityKey, Err: err}
	}

	now := s.now().UTC()
	newID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UpsertResult{}, persistErr(err)
	}
	defer tx.Rollback()

	var (
		id        string
		createdNs int64
	)
	err = tx.QueryRowContext(ctx, upsertProduct,
		newID, record.IdentityKey, record.VendorID, record.Vendor, record.Name,
		nullPrice(record.Price), nullString(record.SKU), record.Category, record.RoomType, record.Style,
		record.Color, record.Material, record.Dimensions, record.Description, record.SourceURL,
		boolToInt(record.Available), now.UnixNano(), now.UnixNano(),
	).Scan(&id, &createdNs)
	if err != nil {
		return UpsertResult{}, persistErr(fmt.Errorf("upsert product: %w", err))
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM product_images WHERE product_id = ?", id); err != nil {
		return UpsertResult{}, persistErr(fmt.Errorf("clear images: %w", err))
	}
	for i, img := range record.Images {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_images (product_id, position, source_url, content_type, byte_size, width, height, data)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, img.SourceURL, img.ContentType, img.ByteSize, img.Width, img.Height, img.Data,
		)
		if err != nil {
			return UpsertResult{}, persistErr(fmt.Errorf("insert image %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertResult{}, persistErr(err)
	}

	stored := *record
	stored.ID = id
	stored.CreatedAt = time.Unix(0, createdNs).UTC()
	stored.UpdatedAt = now
	return UpsertResult{Record: &stored, Created: id == newID}, nil
}

const selectProduct = `
SELECT id, identity_key, vendor_id, vendor, name, price, sku, category, room_type, style,
       color, material, dimensions, description, source_url, available, created_at, updated_at
FROM products`

// Get implements Store
func (s *SQLStore) Get(ctx context.Context, id string) (*types.ProductRecord, error) {
	return s.getOne(ctx, selectProduct+" WHERE id = ?", id)
}

// GetByKey implements Store
func (s *SQLStore) GetByKey(ctx context.Context, identityKey string) (*types.ProductRecord, error) {
	return s.getOne(ctx, selectProduct+" WHERE identity_key = ?", identityKey)
}

func (s *SQLStore) getOne(ctx context.Context, query string, arg string) (*types.ProductRecord, error) {
	records, err := s.query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// List implements Store
func (s *SQLStore) List(ctx context.Context, vendorID string, limit int) ([]*types.ProductRecord, error) {
	query := selectProduct
	var args []any
	if vendorID != "" {
		query += " WHERE vendor_id = ?"
		args = append(args, vendorID)
	}
	query += " ORDER BY identity_key"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) ([]*types.ProductRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	var records []*types.ProductRecord
	for rows.Next() {
		record, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// release the connection before loading images
	rows.Close()

	for _, record := range records {
		if record.Images, err = s.images(ctx, record.ID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func scanProduct(rows *sql.Rows) (*types.ProductRecord, error) {
	var (
		r                    types.ProductRecord
		price, sku           sql.NullString
		available            int64
		createdNs, updatedNs int64
	)
	err := rows.Scan(
		&r.ID, &r.IdentityKey, &r.VendorID, &r.Vendor, &r.Name, &price, &sku,
		&r.Category, &r.RoomType, &r.Style, &r.Color, &r.Material, &r.Dimensions,
		&r.Description, &r.SourceURL, &available, &createdNs, &updatedNs,
	)
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	if price.Valid {
		d, err := decimal.NewFromString(price.String)
		if err != nil {
			return nil, fmt.Errorf("scan product %s: bad price %q: %w", r.ID, price.String, err)
		}
		r.Price = decimal.NewNullDecimal(d)
	}
	if sku.Valid {
		v := sku.String
		r.SKU = &v
	}
	r.Available = available != 0
	r.CreatedAt = time.Unix(0, createdNs).UTC()
	r.UpdatedAt = time.Unix(0, updatedNs).UTC()
	return &r, nil
}

func (s *SQLStore) images(ctx context.Context, productID string) ([]types.ImageAsset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_url, content_type, byte_size, width, height, data
		 FROM product_images WHERE product_id = ? ORDER BY position`, productID)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	images := []types.ImageAsset{}
	for rows.Next() {
		var img types.ImageAsset
		if err := rows.Scan(&img.SourceURL, &img.ContentType, &img.ByteSize, &img.Width, &img.Height, &img.Data); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Count implements Store
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Ping implements Store
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}
	return nil
}

// Close implements Store
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func nullPrice(p decimal.NullDecimal) sql.NullString {
	if !p.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: p.Decimal.String(), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
