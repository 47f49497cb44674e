package federated

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/domain"
	"google.golang.org/api/option"
)

// FirebaseTokenVerifier is the subset of *auth.Client used for verification.
type FirebaseTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier checks Firebase Authentication ID tokens: signature,
// issuer, audience and expiry are validated by the Admin SDK.
type FirebaseVerifier struct {
	client  FirebaseTokenVerifier
	timeout time.Duration
}

func NewFirebaseVerifier(ctx context.Context, credentialsFile, projectID string, timeout time.Duration) (*FirebaseVerifier, error) {
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}
	return NewFirebaseVerifierWithClient(client, timeout), nil
}

func NewFirebaseVerifierWithClient(client FirebaseTokenVerifier, timeout time.Duration) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, timeout: timeout}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*domain.FederatedIdentity, error) {
	return withTimeout(ctx, v.timeout, func(ctx context.Context) (*domain.FederatedIdentity, error) {
		token, err := v.client.VerifyIDToken(ctx, idToken)
		if err != nil {
			return nil, err
		}
		return identityFromClaims(token.UID, token.Claims), nil
	})
}
