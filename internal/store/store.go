// Package store defines the storage interface and implementations.
package store

import (
	"context"

	"github.com/MariaBraganca/immobyte/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Auction operations
	CreateAuction(ctx context.Context, auction *domain.Auction) error
	GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error)
	ListAuctions(ctx context.Context) ([]domain.Auction, error)

	// User operations
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// Lifecycle
	Close() error
}
