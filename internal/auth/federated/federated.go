// Package federated verifies identity tokens issued by external providers
// and turns their claims into a domain.FederatedIdentity.
package federated

import (
	"context"
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/travel-auth/internal/errors"
)

const DefaultTimeout = 5 * time.Second

// identityFromClaims reads the standard OpenID profile claims.
func identityFromClaims(uid string, claims map[string]any) *domain.FederatedIdentity {
	return &domain.FederatedIdentity{
		UID:         uid,
		Email:       stringClaim(claims, "email"),
		Name:        stringClaim(claims, "name"),
		Picture:     stringClaim(claims, "picture"),
		PhoneNumber: stringClaim(claims, "phone_number"),
	}
}

func stringClaim(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// withTimeout bounds a provider call. A provider that does not answer in
// time is treated as a rejected token.
func withTimeout(ctx context.Context, timeout time.Duration, verify func(context.Context) (*domain.FederatedIdentity, error)) (*domain.FederatedIdentity, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		identity *domain.FederatedIdentity
		err      error
	}
	done := make(chan result, 1)
	go func() {
		identity, err := verify(ctx)
		done <- result{identity, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %w", autherror.ErrInvalidFederatedToken, res.err)
		}
		return res.identity, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", autherror.ErrInvalidFederatedToken, ctx.Err())
	}
}

// Disabled rejects every token. It is used when no provider is configured.
type Disabled struct{}

func (Disabled) Verify(context.Context, string) (*domain.FederatedIdentity, error) {
	return nil, autherror.ErrFederatedUnavailable
}
