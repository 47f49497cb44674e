package domain

//go:generate mockgen -destination=../../mocks/mock_account_repository.go -package=mocks github.com/AnthoniusHendriyanto/travel-auth/internal/auth/domain AccountRepository,IdentityVerifier

import "context"

// AccountRepository is the credential store. Lookups return (nil, nil) when no
// account matches. Every refresh-token mutation is a single atomic operation.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Insert(ctx context.Context, account *Account) (string, error)
	Update(ctx context.Context, id string, patch AccountPatch) error
	PushRefreshToken(ctx context.Context, id, token string, limit int) error
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string, limit int) error
	RemoveRefreshToken(ctx context.Context, id, token string) error
}

// IdentityVerifier verifies identity tokens minted by an external provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*FederatedIdentity, error)
}
