package federated

import (
	"context"
	"time"

	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/domain"
	"google.golang.org/api/idtoken"
)

// ValidateFunc has the signature of idtoken.Validate.
type ValidateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks Google Sign-In ID tokens issued for clientID.
type GoogleVerifier struct {
	clientID string
	validate ValidateFunc
	timeout  time.Duration
}

func NewGoogleVerifier(clientID string, timeout time.Duration) *GoogleVerifier {
	return NewGoogleVerifierWithValidator(clientID, idtoken.Validate, timeout)
}

func NewGoogleVerifierWithValidator(clientID string, validate ValidateFunc, timeout time.Duration) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: validate, timeout: timeout}
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*domain.FederatedIdentity, error) {
	return withTimeout(ctx, v.timeout, func(ctx context.Context) (*domain.FederatedIdentity, error) {
		payload, err := v.validate(ctx, idToken, v.clientID)
		if err != nil {
			return nil, err
		}
		return identityFromClaims(payload.Subject, payload.Claims), nil
	})
}
