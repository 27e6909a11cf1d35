package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"afrilink/internal/domain"
)

// Schema creates the tables when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	vendor_id   TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price       BIGINT NOT NULL CHECK (price >= 0),
	commission  INTEGER NOT NULL CHECK (commission BETWEEN 1 AND 50),
	category    TEXT NOT NULL,
	images      TEXT[] NOT NULL DEFAULT '{}',
	sales       BIGINT NOT NULL DEFAULT 0,
	status      TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected', 'pending_takedown', 'taken_down')),
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS products_vendor_idx ON products (vendor_id, created_at DESC);
CREATE INDEX IF NOT EXISTS products_status_idx ON products (status, created_at DESC);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	type       TEXT NOT NULL,
	read       BOOLEAN NOT NULL DEFAULT FALSE,
	link       TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at DESC);
`

const (
	productColumns      = "id, vendor_id, title, description, price, commission, category, images, sales, status, created_at, updated_at"
	notificationColumns = "id, user_id, title, message, type, read, link, created_at"
)

// dbProduct carries images as TEXT[].
type dbProduct struct {
	domain.Product
	Images pq.StringArray `db:"images"`
}

func (r dbProduct) toDomain() domain.Product {
	p := r.Product
	p.Images = []string(r.Images)
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}

// unavailable wraps driver and transport errors so callers can match ErrStoreUnavailable.
// A cancelled caller context is returned unwrapped.
func unavailable(component string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	log.Error().Err(err).Str("component", component).Msg("")
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// PostgresProducts is a ProductRepository over sqlx.
type PostgresProducts struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresProducts(db *sqlx.DB) *PostgresProducts {
	return &PostgresProducts{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var (
	_ ProductRepository      = (*PostgresProducts)(nil)
	_ NotificationRepository = (*PostgresNotifications)(nil)
)

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return unavailable("Migrate", err)
	}
	return nil
}

func (r *PostgresProducts) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	p.UpdatedAt = p.CreatedAt
	images := pq.StringArray(p.Images)
	if images == nil {
		images = pq.StringArray{}
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)",
		p.ID, p.VendorID, p.Title, p.Description, p.Price, p.Commission, p.Category,
		images, p.Sales, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return unavailable("CreateProduct", err)
	}
	return nil
}

func (r *PostgresProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var row dbProduct
	err := r.db.GetContext(ctx, &row, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("GetProductByID", err)
	}
	p := row.toDomain()
	return &p, nil
}

func (r *PostgresProducts) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	conds := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.VendorID != "" {
		add("vendor_id = $%d", f.VendorID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.TitleSubstring != "" {
		add("title ILIKE '%%' || $%d || '%%'", f.TitleSubstring)
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	var rows []dbProduct
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, unavailable("ListProducts", err)
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// UpdateStatus is a single conditional UPDATE; on no match the row is re-read
// to tell a missing product from a stale status.
func (r *PostgresProducts) UpdateStatus(ctx context.Context, id string, from, to domain.ProductStatus) (*domain.Product, error) {
	var row dbProduct
	err := r.db.GetContext(ctx, &row,
		"UPDATE products SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4 RETURNING "+productColumns,
		to, r.now(), id, from,
	)
	if err == nil {
		p := row.toDomain()
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, unavailable("UpdateProductStatus", err)
	}

	var current domain.ProductStatus
	err = r.db.GetContext(ctx, &current, "SELECT status FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("UpdateProductStatus", err)
	}
	return nil, ErrStatusConflict
}

// PostgresNotifications is a NotificationRepository over sqlx.
type PostgresNotifications struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresNotifications(db *sqlx.DB) *PostgresNotifications {
	return &PostgresNotifications{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *PostgresNotifications) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now()
	}
	_, err := r.db.NamedExecContext(ctx,
		"INSERT INTO notifications ("+notificationColumns+") VALUES (:id, :user_id, :title, :message, :type, :read, :link, :created_at)",
		n,
	)
	if err != nil {
		return unavailable("CreateNotification", err)
	}
	return nil
}

func (r *PostgresNotifications) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	query := "SELECT " + notificationColumns + " FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC"
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	out := make([]domain.Notification, 0)
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, unavailable("ListNotifications", err)
	}
	return out, nil
}

func (r *PostgresNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE", userID); err != nil {
		return 0, unavailable("CountUnreadNotifications", err)
	}
	return count, nil
}

func (r *PostgresNotifications) MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error) {
	return r.returningOne(ctx, "MarkNotificationRead",
		"UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2 RETURNING "+notificationColumns, id, userID)
}

func (r *PostgresNotifications) MarkAllRead(ctx context.Context, userID string) ([]domain.Notification, error) {
	return r.returningMany(ctx, "MarkAllNotificationsRead",
		"UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE RETURNING "+notificationColumns, userID)
}

func (r *PostgresNotifications) Delete(ctx context.Context, userID, id string) (*domain.Notification, error) {
	return r.returningOne(ctx, "DeleteNotification",
		"DELETE FROM notifications WHERE id = $1 AND user_id = $2 RETURNING "+notificationColumns, id, userID)
}

func (r *PostgresNotifications) DeleteAll(ctx context.Context, userID string) ([]domain.Notification, error) {
	return r.returningMany(ctx, "DeleteAllNotifications",
		"DELETE FROM notifications WHERE user_id = $1 RETURNING "+notificationColumns, userID)
}

func (r *PostgresNotifications) returningOne(ctx context.Context, component, query string, args ...interface{}) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.GetContext(ctx, &n, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable(component, err)
	}
	return &n, nil
}

func (r *PostgresNotifications) returningMany(ctx context.Context, component, query string, args ...interface{}) ([]domain.Notification, error) {
	out := make([]domain.Notification, 0)
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, unavailable(component, err)
	}
	return out, nil
}
