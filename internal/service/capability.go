package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"greenride/internal/domain"
)

// Minter is the interface for the external fungible token ledger.
// Mint is called synchronously inside the verification transaction; a
// failure aborts the whole verification.
type Minter interface {
	Mint(ctx context.Context, recipient string, amount int64, memo string) error
}

// BadgeIssuer is the interface for the external non-fungible asset ledger.
type BadgeIssuer interface {
	// IssueBadgeAsset creates the badge asset and returns its identifier.
	IssueBadgeAsset(ctx context.Context, recipient string, kind domain.BadgeKind) (string, error)
}

// MockMinter is a mock implementation of Minter.
type MockMinter struct{}

// NewMockMinter creates a new mock minter.
func NewMockMinter() *MockMinter {
	return &MockMinter{}
}

// Mint logs the mint and always succeeds.
func (m *MockMinter) Mint(ctx context.Context, recipient string, amount int64, memo string) error {
	log.Printf("[MINT] recipient=%s amount=%d memo=%q", recipient, amount, memo)
	return nil
}

// MockBadgeIssuer is a mock implementation of BadgeIssuer.
type MockBadgeIssuer struct{}

// NewMockBadgeIssuer creates a new mock badge issuer.
func NewMockBadgeIssuer() *MockBadgeIssuer {
	return &MockBadgeIssuer{}
}

// IssueBadgeAsset returns a fresh asset id and always succeeds.
func (m *MockBadgeIssuer) IssueBadgeAsset(ctx context.Context, recipient string, kind domain.BadgeKind) (string, error) {
	assetID := uuid.New().String()
	log.Printf("[BADGE-ASSET] recipient=%s kind=%s asset=%s", recipient, kind, assetID)
	return assetID, nil
}
