package constant

const (
	// DefaultTokenType is returned to clients alongside every access token.
	DefaultTokenType = "Bearer"

	// DefaultMaxRefreshTokens caps the number of concurrent sessions per account.
	DefaultMaxRefreshTokens = 5

	DefaultFullName          = "User"
	DefaultFederatedFullName = "Firebase User"

	AuthMethodPassword  = "password"
	AuthMethodFederated = "federated"

	// LocalsClaimsKey is the fiber.Ctx locals key holding verified access claims.
	LocalsClaimsKey = "claims"
)
