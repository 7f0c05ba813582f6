package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MariaBraganca/immobyte/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS auctions (
			auction_id TEXT PRIMARY KEY,
			number TEXT NOT NULL,
			court TEXT NOT NULL,
			object TEXT NOT NULL,
			address TEXT NOT NULL,
			price REAL NOT NULL,
			appointment DATETIME NOT NULL,
			description TEXT NOT NULL,
			report_url TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_auctions_number ON auctions(number)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateAuction creates a new auction record.
func (s *SQLiteStore) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auctions (auction_id, number, court, object, address, price, appointment, description, report_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		auction.AuctionID, auction.Number, auction.Court, auction.Object, auction.Address,
		auction.Price, auction.Appointment, auction.Description, auction.ReportURL,
		auction.CreatedAt, auction.UpdatedAt)
	return err
}

// GetAuction retrieves an auction by ID. Returns nil when not found.
func (s *SQLiteStore) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	var a domain.Auction
	err := s.db.QueryRowContext(ctx,
		`SELECT auction_id, number, court, object, address, price, appointment, description, report_url, created_at, updated_at
		 FROM auctions WHERE auction_id = ?`, auctionID).
		Scan(&a.AuctionID, &a.Number, &a.Court, &a.Object, &a.Address, &a.Price,
			&a.Appointment, &a.Description, &a.ReportURL, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAuctions retrieves all auction records ordered by appointment date.
func (s *SQLiteStore) ListAuctions(ctx context.Context) ([]domain.Auction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT auction_id, number, court, object, address, price, appointment, description, report_url, created_at, updated_at
		 FROM auctions ORDER BY appointment`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	auctions := []domain.Auction{}
	for rows.Next() {
		var a domain.Auction
		if err := rows.Scan(&a.AuctionID, &a.Number, &a.Court, &a.Object, &a.Address, &a.Price,
			&a.Appointment, &a.Description, &a.ReportURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, username, email) VALUES (?, ?, ?)`,
		user.UserID, user.Username, user.Email)
	return err
}

// GetUser retrieves a user by ID. Returns nil when not found.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	var email sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, email FROM users WHERE user_id = ?`, userID).
		Scan(&u.UserID, &u.Username, &email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	return &u, nil
}
