// Package dbtest opens throwaway SQLite databases carrying the FoodDash schema
// for repository and service tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// schema mirrors pkg/migrate/migrations with SQLite types. Decimals are stored
// as TEXT so they round-trip exactly.
var schema = []string{
	`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL,
  availability TEXT NOT NULL DEFAULT 'offline',
  address_line TEXT,
  latitude REAL,
  longitude REAL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  address_line TEXT NOT NULL,
  latitude REAL NOT NULL,
  longitude REAL NOT NULL,
  image_url TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  mark_up TEXT NOT NULL DEFAULT '0',
  selling_price TEXT NOT NULL,
  image_url TEXT,
  created_by TEXT NOT NULL,
  updated_by TEXT,
  history TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_products_name_price_store ON products (name, price, store_id);`,
	`CREATE TABLE menu_options (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  group_name TEXT NOT NULL,
  option_name TEXT NOT NULL,
  price_modifier TEXT NOT NULL DEFAULT '0',
  is_required INTEGER NOT NULL DEFAULT 0,
  selection_type TEXT NOT NULL DEFAULT 'single',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  option_ids TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE payment_methods (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  gcash_number TEXT,
  gcash_qr_code TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  lines TEXT NOT NULL,
  total_amount TEXT NOT NULL,
  grand_total_amount TEXT NOT NULL,
  payment_method_id TEXT NOT NULL,
  delivery_status TEXT NOT NULL DEFAULT 'pending',
  rider_id TEXT,
  store_latitude REAL NOT NULL,
  store_longitude REAL NOT NULL,
  customer_latitude REAL NOT NULL,
  customer_longitude REAL NOT NULL,
  distance_km TEXT NOT NULL,
  estimated_minutes INTEGER NOT NULL DEFAULT 0,
  delivery_fee TEXT NOT NULL,
  notes TEXT,
  created_by TEXT NOT NULL,
  updated_by TEXT,
  history TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	`CREATE TABLE outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL UNIQUE,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME
);`,
}

// Open returns an isolated in-memory database with every table created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
