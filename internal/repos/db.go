package repos

import (
	"context"
	"errors"
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"

	"brokerage/internal/catalog"
	"brokerage/internal/domain"
)

// OpenDB opens the database with the default site profile.
func OpenDB(dsn string) (*sqlx.DB, error) {
	return Open(dsn, DefaultSiteSettings())
}

// Open connects, creates the schema and seeds an empty database with the
// demo catalog and the given site profile. It never creates accounts:
// administrators come from `brokerage admin create` or SeedDemoUsers.
func Open(dsn string, site domain.SiteSettings) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	if err := seedSettings(db, site); err != nil {
		return nil, err
	}

	return db, nil
}

// IsTransient reports whether err is a lock/busy condition worth retrying.
func IsTransient(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqliteBusy, sqliteLocked:
			return true
		}
	}
	return false
}

const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Listings; position keeps the collection order
CREATE TABLE IF NOT EXISTS properties(
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL CHECK (type IN ('sale','rental','land')),
  status TEXT NOT NULL CHECK (status IN ('available','sold','rented')),
  price NUMERIC NOT NULL CHECK (price >= 0),
  city TEXT NOT NULL DEFAULT '',
  neighborhood TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  area NUMERIC NOT NULL CHECK (area > 0),
  bedrooms INTEGER,
  bathrooms INTEGER,
  garage INTEGER,
  built_area NUMERIC,
  amenities_json TEXT NOT NULL DEFAULT '[]',
  images_json TEXT NOT NULL DEFAULT '[]',
  lat NUMERIC,
  lng NUMERIC,
  accepts_exchange INTEGER NOT NULL DEFAULT 0,
  accepts_financing INTEGER NOT NULL DEFAULT 0,
  highlighted INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_properties_position ON properties(position);

-- Favorites per browsing client
CREATE TABLE IF NOT EXISTS favorites(
  client_id TEXT NOT NULL,
  property_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (client_id, property_id)
);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  expires_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Seller profile (single row)
CREATE TABLE IF NOT EXISTS settings(
  id INTEGER PRIMARY KEY CHECK (id = 1),
  seller_name TEXT NOT NULL DEFAULT '',
  seller_phone TEXT NOT NULL DEFAULT '',
  seller_email TEXT NOT NULL DEFAULT '',
  seller_bio TEXT NOT NULL DEFAULT '',
  whatsapp_number TEXT NOT NULL DEFAULT '',
  meta_description TEXT NOT NULL DEFAULT '',
  keywords TEXT NOT NULL DEFAULT '',
  updated_at TEXT
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM properties`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo listings")
	return NewPropertyRepo(db).Save(context.Background(), catalog.SeedProperties())
}

// DemoPassword is the password of the accounts created by SeedDemoUsers.
const DemoPassword = "Passw0rd!"

// SeedDemoUsers ensures one ADMIN and one plain USER exist (idempotent). Only
// for local demos and tests: the password is public.
func SeedDemoUsers(ctx context.Context, db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name string, role domain.Role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Role: string(role), Hash: string(h)}
	}

	users := []u{
		mk("u-admin", "admin@brokerage.test", "Admin", domain.RoleAdmin, DemoPassword),
		mk("u-agent", "agent@brokerage.test", "Agent", domain.RoleUser, DemoPassword),
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Println("[seed] demo accounts admin@brokerage.test and agent@brokerage.test are active")
	return nil
}

func seedSettings(db *sqlx.DB, s domain.SiteSettings) error {
	_, err := db.NamedExec(`
		INSERT INTO settings(id,seller_name,seller_phone,seller_email,seller_bio,whatsapp_number,meta_description,keywords)
		VALUES(1,:seller_name,:seller_phone,:seller_email,:seller_bio,:whatsapp_number,:meta_description,:keywords)
		ON CONFLICT(id) DO NOTHING
	`, s)
	return err
}
