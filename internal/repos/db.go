package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	// One connection: sqlite has a single writer anyway, and this keeps
	// :memory: databases coherent and SQLITE_BUSY out of the picture.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Ensure demo identities exist first; seed bookings reference them
	// (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (products/bookings)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;
PRAGMA busy_timeout = 5000;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('CUSTOMER','PROVIDER','SELLER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Products (inventory pool shared with the storefront checkout)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  description TEXT,
  brand TEXT,
  sku TEXT,
  category TEXT NOT NULL,
  subcategory TEXT,
  compatibility TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING','APPROVED','REJECTED')),
  price NUMERIC NOT NULL CHECK (price >= 0),
  total_qty INTEGER NOT NULL DEFAULT 0 CHECK (total_qty >= 0),
  reserved_qty INTEGER NOT NULL DEFAULT 0 CHECK (reserved_qty >= 0 AND reserved_qty <= total_qty),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_status   ON products(status);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));

-- Service bookings
CREATE TABLE IF NOT EXISTS bookings(
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL REFERENCES users(id),
  provider_id TEXT NOT NULL REFERENCES users(id),
  service_type TEXT NOT NULL,
  description TEXT,
  scheduled_at TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING'
    CHECK (status IN ('PENDING','CONFIRMED','IN_PROGRESS','COMPLETED','REJECTED')),
  labor_cost NUMERIC NOT NULL DEFAULT 0,
  product_cost NUMERIC NOT NULL DEFAULT 0,
  total_cost NUMERIC NOT NULL DEFAULT 0,
  approval_status TEXT NOT NULL DEFAULT 'NONE'
    CHECK (approval_status IN ('NONE','PENDING','ACCEPTED','REJECTED')),
  price_approved INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_bookings_provider ON bookings(provider_id);
CREATE INDEX IF NOT EXISTS idx_bookings_customer ON bookings(customer_id);

-- Parts attached to a booking; one row per product per booking
CREATE TABLE IF NOT EXISTS linked_products(
  booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  product_name TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  installation INTEGER NOT NULL DEFAULT 0,
  allocation TEXT NOT NULL DEFAULT 'RESERVED'
    CHECK (allocation IN ('RESERVED','ALLOCATED','INSTALLED','RETURNED')),
  reserved_at TEXT DEFAULT CURRENT_TIMESTAMP,
  allocated_at TEXT,
  installed_at TEXT,
  PRIMARY KEY (booking_id, product_id)
);

-- Append-only histories: rows are inserted, never updated or deleted
CREATE TABLE IF NOT EXISTS cost_history(
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
  from_total NUMERIC NOT NULL,
  to_total NUMERIC NOT NULL,
  changed_at TEXT DEFAULT CURRENT_TIMESTAMP,
  actor_id TEXT NOT NULL,
  actor_role TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cost_history_booking ON cost_history(booking_id);

CREATE TABLE IF NOT EXISTS status_history(
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
  from_status TEXT NOT NULL,
  to_status TEXT NOT NULL,
  changed_at TEXT DEFAULT CURRENT_TIMESTAMP,
  actor_id TEXT NOT NULL,
  actor_role TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_status_history_booking ON status_history(booking_id);

-- Price-approval notices
CREATE TABLE IF NOT EXISTS notices(
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
  customer_id TEXT NOT NULL REFERENCES users(id),
  proposed_price NUMERIC NOT NULL,
  previous_price NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING'
    CHECK (status IN ('PENDING','ACCEPTED','REJECTED','SUPERSEDED')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  responded_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_notices_customer ON notices(customer_id);
CREATE INDEX IF NOT EXISTS idx_notices_booking  ON notices(booking_id);

-- Notification inbox (best-effort fan-out target)
CREATE TABLE IF NOT EXISTS notifications(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  reference_id TEXT,
  payload_json TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo products/bookings")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO users(id,email,name,password_hash,role) VALUES
	  ('u-seed-seller','seed-seller@fixbay.test','Seed Seller','*','SELLER')
	  ON CONFLICT(email) DO NOTHING`)

	tx.MustExec(`INSERT INTO products(id,seller_id,name,description,brand,sku,category,subcategory,compatibility,status,price,total_qty,reserved_qty) VALUES
	  ('scr-ip13','u-seed-seller','iPhone 13 OLED Screen','OEM-grade replacement display','Lumina','SCR-IP13-OLED','screens','phone','iphone 13,iphone 13 pro','APPROVED',89.99,12,0),
	  ('bat-ip13','u-seed-seller','iPhone 13 Battery','High-capacity replacement cell','VoltMax','BAT-IP13','batteries','phone','iphone 13','APPROVED',34.50,25,0),
	  ('pad-brk-22','u-seed-seller','Ceramic Brake Pad Set','Low-dust ceramic pads, front axle','StopRight','PAD-BRK-22','brakes','car','civic 2016-2021,accord 2018+','APPROVED',54.00,8,0),
	  ('fan-ps5','u-seed-seller','PS5 Cooling Fan','Replacement internal fan, 12V','AeroCool','FAN-PS5-12V','cooling','console','ps5','PENDING',27.90,15,0)`)

	tx.MustExec(`INSERT INTO bookings(id,customer_id,provider_id,service_type,description,scheduled_at,status,labor_cost,product_cost,total_cost) VALUES
	  ('bk-demo-1','u-carla','p-miguel','phone-repair','Cracked screen, battery drains fast','2025-10-02T10:00:00Z','CONFIRMED',40,0,40),
	  ('bk-demo-2','u-carla','p-miguel','car-service','Front brakes squeal under braking','2025-10-05T09:00:00Z','PENDING',120,0,120)`)

	return tx.Commit()
}

// seedUsers ensures demo customers, providers, a seller and an admin exist
// (idempotent). Seed bookings reference these ids, so run before first use.
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-carla", "carla@fixbay.test", "Carla", "CUSTOMER", "Passw0rd!"),
		mk("u-dev", "dev@fixbay.test", "Dev", "CUSTOMER", "Passw0rd!"),
		mk("p-miguel", "miguel@fixbay.test", "Miguel", "PROVIDER", "Passw0rd!"),
		mk("p-aiko", "aiko@fixbay.test", "Aiko", "PROVIDER", "Passw0rd!"),
		mk("s-parts", "parts@fixbay.test", "PartsCo", "SELLER", "Passw0rd!"),
		mk("u-admin", "admin@fixbay.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	// Demo sessions so the API is drivable without the auth flow.
	for _, s := range [][2]string{
		{"sid-carla", "u-carla"},
		{"sid-miguel", "p-miguel"},
		{"sid-admin", "u-admin"},
	} {
		if _, err := tx.Exec(`
			INSERT INTO sessions(id,user_id) VALUES(?,?)
			ON CONFLICT(id) DO NOTHING
		`, s[0], s[1]); err != nil {
			return err
		}
	}

	return tx.Commit()
}
