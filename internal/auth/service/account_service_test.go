package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AnthoniusHendriyanto/travel-auth/config"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/service"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/validation"
	autherror "github.com/AnthoniusHendriyanto/travel-auth/internal/errors"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/logging"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/mocks"
	authconstant "github.com/AnthoniusHendriyanto/travel-auth/pkg/constant"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceMocks struct {
	repo     *mocks.MockAccountRepository
	tokens   *mocks.MockTokenGenerator
	hasher   *mocks.MockPasswordHasher
	verifier *mocks.MockIdentityVerifier
}

func newTestService(t *testing.T) (*service.AccountService, serviceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := serviceMocks{
		repo:     mocks.NewMockAccountRepository(ctrl),
		tokens:   mocks.NewMockTokenGenerator(ctrl),
		hasher:   mocks.NewMockPasswordHasher(ctrl),
		verifier: mocks.NewMockIdentityVerifier(ctrl),
	}
	cfg := &config.Config{MaxActiveRefreshTokens: 5}
	s := service.NewAccountService(m.repo, m.tokens, m.hasher, m.verifier, cfg, logging.Discard())
	return s, m
}

// expectSession sets up the token issuance that closes every successful sign-in.
func (m serviceMocks) expectSession(accountID, email string) {
	m.tokens.EXPECT().IssueAccess(accountID, email).Return("access-token", nil)
	m.tokens.EXPECT().IssueRefresh(accountID).Return("refresh-token", nil)
	m.repo.EXPECT().PushRefreshToken(gomock.Any(), accountID, "refresh-token", 5).Return(nil)
	m.tokens.EXPECT().GetAccessTokenExpiry().Return(15 * time.Minute)
}

func TestAccountService_Register_Success(t *testing.T) {
	s, m := newTestService(t)

	input := dto.RegisterInput{
		Email:    "  Jane@Example.com ",
		Password: "Secret123",
		FullName: "Jane <script>alert(1)</script>Doe",
	}

	var inserted *domain.Account
	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(nil, nil)
	m.hasher.EXPECT().Hash("Secret123").Return("digest", nil)
	m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.Account) (string, error) {
		inserted = a
		return "acc-1", nil
	})
	m.expectSession("acc-1", "jane@example.com")

	resp, err := s.Register(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.Equal(t, "refresh-token", resp.RefreshToken)
	assert.Equal(t, authconstant.DefaultTokenType, resp.TokenType)
	assert.Equal(t, 900, resp.ExpiresIn)
	assert.Equal(t, "acc-1", resp.Account.ID)
	assert.Equal(t, "jane@example.com", resp.Account.Email)
	assert.Equal(t, []string{authconstant.AuthMethodPassword}, resp.Account.AuthMethods)

	require.NotNil(t, inserted)
	assert.Equal(t, "digest", inserted.PasswordHash)
	assert.Equal(t, "Jane Doe", inserted.FullName)
	assert.True(t, inserted.IsActive)
	assert.NotZero(t, inserted.CreatedAt)
	assert.Nil(t, inserted.LastLoginAt)
}

func TestAccountService_Register_FederatedUIDOnlyOpensNoSession(t *testing.T) {
	s, m := newTestService(t)

	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(nil, nil)
	m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.Account) (string, error) {
		assert.Equal(t, authconstant.DefaultFullName, a.FullName)
		assert.Empty(t, a.PasswordHash)
		assert.Equal(t, "fb-uid", a.FederatedUID)
		return "acc-1", nil
	})
	// No token issuance or PushRefreshToken is expected.

	resp, err := s.Register(context.Background(), dto.RegisterInput{Email: "jane@example.com", FederatedUID: "fb-uid"})

	require.NoError(t, err)
	assert.Nil(t, resp.TokenResponse)
	assert.Equal(t, "acc-1", resp.Account.ID)
	assert.Equal(t, []string{authconstant.AuthMethodFederated}, resp.Account.AuthMethods)
}

func TestAccountService_Register_KeepsLongPhotoURL(t *testing.T) {
	s, m := newTestService(t)
	photo := "https://cdn.example.com/photos/" + strings.Repeat("a", 292) + ".png"

	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(nil, nil)
	m.hasher.EXPECT().Hash("Secret123").Return("digest", nil)
	m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.Account) (string, error) {
		assert.Equal(t, photo, a.PhotoURL)
		return "acc-1", nil
	})
	m.expectSession("acc-1", "jane@example.com")

	resp, err := s.Register(context.Background(), dto.RegisterInput{Email: "jane@example.com", Password: "Secret123", PhotoURL: photo})

	require.NoError(t, err)
	assert.Equal(t, photo, resp.Account.PhotoURL)
}

func TestAccountService_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input dto.RegisterInput
	}{
		{name: "invalid email", input: dto.RegisterInput{Email: "not-an-email", Password: "Secret123"}},
		{name: "no auth method", input: dto.RegisterInput{Email: "jane@example.com"}},
		{name: "weak password", input: dto.RegisterInput{Email: "jane@example.com", Password: "secret"}},
		{name: "bad photo url", input: dto.RegisterInput{Email: "jane@example.com", Password: "Secret123", PhotoURL: "javascript:alert(1)"}},
		{name: "photo url too long", input: dto.RegisterInput{Email: "jane@example.com", Password: "Secret123", PhotoURL: "https://x.com/" + strings.Repeat("a", validation.MaxURLLength)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t)

			resp, err := s.Register(context.Background(), tt.input)

			assert.Nil(t, resp)
			assert.True(t, autherror.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestAccountService_Register_EmailAlreadyExists(t *testing.T) {
	s, m := newTestService(t)

	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(&domain.Account{ID: "existing"}, nil)

	resp, err := s.Register(context.Background(), dto.RegisterInput{Email: "jane@example.com", Password: "Secret123"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
}

func TestAccountService_Register_InsertRace(t *testing.T) {
	s, m := newTestService(t)

	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(nil, nil)
	m.hasher.EXPECT().Hash("Secret123").Return("digest", nil)
	m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return("", autherror.ErrEmailAlreadyInUse)

	_, err := s.Register(context.Background(), dto.RegisterInput{Email: "jane@example.com", Password: "Secret123"})

	assert.ErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
}

func TestAccountService_Register_StoreError(t *testing.T) {
	s, m := newTestService(t)

	storeErr := errors.New("connection refused")
	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(nil, storeErr)

	_, err := s.Register(context.Background(), dto.RegisterInput{Email: "jane@example.com", Password: "Secret123"})

	assert.ErrorIs(t, err, storeErr)
}

func TestAccountService_Login_Success(t *testing.T) {
	s, m := newTestService(t)

	account := &domain.Account{ID: "acc-1", Email: "jane@example.com", PasswordHash: "digest", IsActive: true}
	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(account, nil)
	m.hasher.EXPECT().Verify("Secret123", "digest").Return(nil)
	m.repo.EXPECT().Update(gomock.Any(), "acc-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, p domain.AccountPatch) error {
		assert.NotNil(t, p.LastLoginAt)
		assert.Nil(t, p.FederatedUID)
		return nil
	})
	m.expectSession("acc-1", "jane@example.com")

	resp, err := s.Login(context.Background(), dto.LoginInput{Email: "Jane@Example.com", Password: "Secret123"})

	require.NoError(t, err)
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.NotNil(t, resp.Account.LastLoginAt)
}

func TestAccountService_Login_Failures(t *testing.T) {
	active := &domain.Account{ID: "acc-1", Email: "jane@example.com", PasswordHash: "digest", IsActive: true}
	federatedOnly := &domain.Account{ID: "acc-2", Email: "jane@example.com", FederatedUID: "uid", IsActive: true}
	disabled := &domain.Account{ID: "acc-3", Email: "jane@example.com", PasswordHash: "digest", IsActive: false}

	tests := []struct {
		name        string
		setup       func(m serviceMocks)
		expectedErr error
	}{
		{
			name: "unknown email",
			setup: func(m serviceMocks) {
				m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(nil, nil)
			},
			expectedErr: autherror.ErrInvalidCredentials,
		},
		{
			name: "wrong password",
			setup: func(m serviceMocks) {
				m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(active, nil)
				m.hasher.EXPECT().Verify("Secret123", "digest").Return(autherror.ErrInvalidCredentials)
			},
			expectedErr: autherror.ErrInvalidCredentials,
		},
		{
			name: "federated account without password",
			setup: func(m serviceMocks) {
				m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(federatedOnly, nil)
				m.hasher.EXPECT().Verify("Secret123", "").Return(autherror.ErrNoPasswordSet)
			},
			expectedErr: autherror.ErrInvalidCredentials,
		},
		{
			name: "disabled account",
			setup: func(m serviceMocks) {
				m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(disabled, nil)
				m.hasher.EXPECT().Verify("Secret123", "digest").Return(nil)
			},
			expectedErr: autherror.ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestService(t)
			tt.setup(m)

			resp, err := s.Login(context.Background(), dto.LoginInput{Email: "jane@example.com", Password: "Secret123"})

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestAccountService_Login_MissingFields(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Login(context.Background(), dto.LoginInput{Email: "jane@example.com"})

	assert.True(t, autherror.IsValidation(err))
}

func TestAccountService_Login_StoreRefreshTokenError(t *testing.T) {
	s, m := newTestService(t)

	account := &domain.Account{ID: "acc-1", Email: "jane@example.com", PasswordHash: "digest", IsActive: true}
	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(account, nil)
	m.hasher.EXPECT().Verify("Secret123", "digest").Return(nil)
	m.repo.EXPECT().Update(gomock.Any(), "acc-1", gomock.Any()).Return(nil)
	m.tokens.EXPECT().IssueAccess("acc-1", "jane@example.com").Return("access-token", nil)
	m.tokens.EXPECT().IssueRefresh("acc-1").Return("refresh-token", nil)
	m.repo.EXPECT().PushRefreshToken(gomock.Any(), "acc-1", "refresh-token", 5).Return(autherror.ErrStoreUnavailable)

	resp, err := s.Login(context.Background(), dto.LoginInput{Email: "jane@example.com", Password: "Secret123"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, autherror.ErrStoreUnavailable)
}

func TestAccountService_FederatedLogin_CreatesAccount(t *testing.T) {
	s, m := newTestService(t)

	m.verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(&domain.FederatedIdentity{
		UID:     "fb-uid",
		Email:   "Jane@Example.com",
		Picture: "https://example.com/p.png",
	}, nil)
	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(nil, nil)
	m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.Account) (string, error) {
		assert.Equal(t, "fb-uid", a.FederatedUID)
		assert.Equal(t, authconstant.DefaultFederatedFullName, a.FullName)
		assert.Equal(t, "https://example.com/p.png", a.PhotoURL)
		assert.Empty(t, a.PasswordHash)
		assert.NotNil(t, a.LastLoginAt)
		return "acc-1", nil
	})
	m.expectSession("acc-1", "jane@example.com")

	resp, err := s.FederatedLogin(context.Background(), "id-token")

	require.NoError(t, err)
	assert.Equal(t, "acc-1", resp.Account.ID)
}

func TestAccountService_FederatedLogin_LinksExistingAccount(t *testing.T) {
	s, m := newTestService(t)

	existing := &domain.Account{ID: "acc-1", Email: "jane@example.com", PasswordHash: "digest", IsActive: true}
	m.verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(&domain.FederatedIdentity{UID: "fb-uid", Email: "jane@example.com"}, nil)
	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(existing, nil)
	m.repo.EXPECT().Update(gomock.Any(), "acc-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, p domain.AccountPatch) error {
		require.NotNil(t, p.FederatedUID)
		assert.Equal(t, "fb-uid", *p.FederatedUID)
		assert.NotNil(t, p.LastLoginAt)
		return nil
	})
	m.expectSession("acc-1", "jane@example.com")

	resp, err := s.FederatedLogin(context.Background(), "id-token")

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{authconstant.AuthMethodPassword, authconstant.AuthMethodFederated}, resp.Account.AuthMethods)
}

func TestAccountService_FederatedLogin_KeepsMatchingUID(t *testing.T) {
	s, m := newTestService(t)

	existing := &domain.Account{ID: "acc-1", Email: "jane@example.com", FederatedUID: "fb-uid", IsActive: true}
	m.verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(&domain.FederatedIdentity{UID: "fb-uid", Email: "jane@example.com"}, nil)
	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(existing, nil)
	m.repo.EXPECT().Update(gomock.Any(), "acc-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, p domain.AccountPatch) error {
		assert.Nil(t, p.FederatedUID)
		assert.NotNil(t, p.LastLoginAt)
		return nil
	})
	m.expectSession("acc-1", "jane@example.com")

	_, err := s.FederatedLogin(context.Background(), "id-token")

	require.NoError(t, err)
}

func TestAccountService_FederatedLogin_RejectsMismatchedUID(t *testing.T) {
	s, m := newTestService(t)

	existing := &domain.Account{ID: "acc-1", Email: "jane@example.com", FederatedUID: "claimed-uid", IsActive: true}
	m.verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(&domain.FederatedIdentity{UID: "real-uid", Email: "jane@example.com"}, nil)
	m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(existing, nil)
	// Neither Update nor any token issuance may happen.

	resp, err := s.FederatedLogin(context.Background(), "id-token")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, autherror.ErrInvalidFederatedToken)
}

func TestAccountService_FederatedLogin_ConcurrentFirstLogin(t *testing.T) {
	s, m := newTestService(t)

	winner := &domain.Account{ID: "acc-1", Email: "jane@example.com", FederatedUID: "fb-uid", IsActive: true}
	m.verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(&domain.FederatedIdentity{UID: "fb-uid", Email: "jane@example.com"}, nil)
	gomock.InOrder(
		m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(nil, nil),
		m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return("", autherror.ErrEmailAlreadyInUse),
		m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(winner, nil),
	)
	m.repo.EXPECT().Update(gomock.Any(), "acc-1", gomock.Any()).Return(nil)
	m.expectSession("acc-1", "jane@example.com")

	resp, err := s.FederatedLogin(context.Background(), "id-token")

	require.NoError(t, err)
	assert.Equal(t, "acc-1", resp.Account.ID)
}

func TestAccountService_FederatedLogin_Failures(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		setup       func(m serviceMocks)
		expectedErr error
	}{
		{
			name:        "empty token",
			token:       "",
			setup:       func(serviceMocks) {},
			expectedErr: autherror.ErrInvalidFederatedToken,
		},
		{
			name:  "rejected by provider",
			token: "id-token",
			setup: func(m serviceMocks) {
				m.verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(nil, errors.New("bad signature"))
			},
			expectedErr: autherror.ErrInvalidFederatedToken,
		},
		{
			name:  "provider not configured",
			token: "id-token",
			setup: func(m serviceMocks) {
				m.verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(nil, autherror.ErrFederatedUnavailable)
			},
			expectedErr: autherror.ErrFederatedUnavailable,
		},
		{
			name:  "no subject claim",
			token: "id-token",
			setup: func(m serviceMocks) {
				m.verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(&domain.FederatedIdentity{Email: "jane@example.com"}, nil)
			},
			expectedErr: autherror.ErrInvalidFederatedToken,
		},
		{
			name:  "no email claim",
			token: "id-token",
			setup: func(m serviceMocks) {
				m.verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(&domain.FederatedIdentity{UID: "fb-uid"}, nil)
			},
			expectedErr: autherror.ErrFederatedEmailMissing,
		},
		{
			name:  "disabled account",
			token: "id-token",
			setup: func(m serviceMocks) {
				m.verifier.EXPECT().Verify(gomock.Any(), "id-token").Return(&domain.FederatedIdentity{UID: "fb-uid", Email: "jane@example.com"}, nil)
				m.repo.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(&domain.Account{ID: "acc-1", FederatedUID: "fb-uid"}, nil)
			},
			expectedErr: autherror.ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestService(t)
			tt.setup(m)

			resp, err := s.FederatedLogin(context.Background(), tt.token)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestAccountService_Refresh_Success(t *testing.T) {
	s, m := newTestService(t)

	account := &domain.Account{ID: "acc-1", Email: "jane@example.com", IsActive: true, RefreshTokens: []string{"old-refresh"}}
	gomock.InOrder(
		m.tokens.EXPECT().VerifyRefresh("old-refresh").Return(&service.JWTCustomClaims{UserID: "acc-1"}, nil),
		m.repo.EXPECT().FindByID(gomock.Any(), "acc-1").Return(account, nil),
		m.tokens.EXPECT().IssueRefresh("acc-1").Return("new-refresh", nil),
		m.repo.EXPECT().RotateRefreshToken(gomock.Any(), "acc-1", "old-refresh", "new-refresh", 5).Return(nil),
		m.tokens.EXPECT().IssueAccess("acc-1", "jane@example.com").Return("new-access", nil),
		m.tokens.EXPECT().GetAccessTokenExpiry().Return(15*time.Minute),
	)

	resp, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "old-refresh"})

	require.NoError(t, err)
	assert.Equal(t, "new-access", resp.AccessToken)
	assert.Equal(t, "new-refresh", resp.RefreshToken)
	assert.Equal(t, authconstant.DefaultTokenType, resp.TokenType)
}

func TestAccountService_Refresh_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m serviceMocks)
	}{
		{
			name: "invalid token",
			setup: func(m serviceMocks) {
				m.tokens.EXPECT().VerifyRefresh("old-refresh").Return(nil, autherror.ErrTokenInvalid)
			},
		},
		{
			name: "expired token",
			setup: func(m serviceMocks) {
				m.tokens.EXPECT().VerifyRefresh("old-refresh").Return(nil, autherror.ErrTokenExpired)
			},
		},
		{
			name: "account gone",
			setup: func(m serviceMocks) {
				m.tokens.EXPECT().VerifyRefresh("old-refresh").Return(&service.JWTCustomClaims{UserID: "acc-1"}, nil)
				m.repo.EXPECT().FindByID(gomock.Any(), "acc-1").Return(nil, nil)
			},
		},
		{
			name: "token already used",
			setup: func(m serviceMocks) {
				m.tokens.EXPECT().VerifyRefresh("old-refresh").Return(&service.JWTCustomClaims{UserID: "acc-1"}, nil)
				m.repo.EXPECT().FindByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", IsActive: true, RefreshTokens: []string{"other"}}, nil)
			},
		},
		{
			name: "account disabled",
			setup: func(m serviceMocks) {
				m.tokens.EXPECT().VerifyRefresh("old-refresh").Return(&service.JWTCustomClaims{UserID: "acc-1"}, nil)
				m.repo.EXPECT().FindByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", RefreshTokens: []string{"old-refresh"}}, nil)
			},
		},
		{
			name: "lost rotation race",
			setup: func(m serviceMocks) {
				m.tokens.EXPECT().VerifyRefresh("old-refresh").Return(&service.JWTCustomClaims{UserID: "acc-1"}, nil)
				m.repo.EXPECT().FindByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", IsActive: true, RefreshTokens: []string{"old-refresh"}}, nil)
				m.tokens.EXPECT().IssueRefresh("acc-1").Return("new-refresh", nil)
				m.repo.EXPECT().RotateRefreshToken(gomock.Any(), "acc-1", "old-refresh", "new-refresh", 5).Return(autherror.ErrRefreshTokenNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestService(t)
			tt.setup(m)

			resp, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "old-refresh"})

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, autherror.ErrUnauthorized)
		})
	}
}

func TestAccountService_Refresh_MissingToken(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Refresh(context.Background(), dto.RefreshInput{})

	assert.True(t, autherror.IsValidation(err))
}

func TestAccountService_Logout(t *testing.T) {
	t.Run("removes the token", func(t *testing.T) {
		s, m := newTestService(t)
		m.tokens.EXPECT().VerifyRefresh("refresh").Return(&service.JWTCustomClaims{UserID: "acc-1"}, nil)
		m.repo.EXPECT().RemoveRefreshToken(gomock.Any(), "acc-1", "refresh").Return(nil)

		s.Logout(context.Background(), dto.LogoutInput{RefreshToken: "refresh"})
	})

	t.Run("ignores unverifiable tokens", func(t *testing.T) {
		s, m := newTestService(t)
		m.tokens.EXPECT().VerifyRefresh("garbage").Return(nil, autherror.ErrTokenInvalid)

		s.Logout(context.Background(), dto.LogoutInput{RefreshToken: "garbage"})
	})

	t.Run("ignores store failures", func(t *testing.T) {
		s, m := newTestService(t)
		m.tokens.EXPECT().VerifyRefresh("refresh").Return(&service.JWTCustomClaims{UserID: "acc-1"}, nil)
		m.repo.EXPECT().RemoveRefreshToken(gomock.Any(), "acc-1", "refresh").Return(autherror.ErrStoreUnavailable)

		s.Logout(context.Background(), dto.LogoutInput{RefreshToken: "refresh"})
	})

	t.Run("empty token is a no-op", func(t *testing.T) {
		s, _ := newTestService(t)

		s.Logout(context.Background(), dto.LogoutInput{})
	})
}

func TestAccountService_Me(t *testing.T) {
	s, m := newTestService(t)

	m.repo.EXPECT().FindByID(gomock.Any(), "acc-1").Return(&domain.Account{
		ID:            "acc-1",
		Email:         "jane@example.com",
		PasswordHash:  "digest",
		RefreshTokens: []string{"secret-token"},
	}, nil)
	m.repo.EXPECT().FindByID(gomock.Any(), "missing").Return(nil, nil)

	out, err := s.Me(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", out.Email)

	_, err = s.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, autherror.ErrAccountNotFound)
}

func TestAccountService_GetAccount_OtherAccountForbidden(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.GetAccount(context.Background(), "acc-1", "acc-2")

	assert.ErrorIs(t, err, autherror.ErrForbidden)
}

func TestAccountService_UpdateProfile(t *testing.T) {
	t.Run("profile fields", func(t *testing.T) {
		s, m := newTestService(t)
		name, phone := " Jane ", "+6281"

		m.repo.EXPECT().Update(gomock.Any(), "acc-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, p domain.AccountPatch) error {
			assert.Equal(t, "Jane", *p.FullName)
			assert.Equal(t, "+6281", *p.Phone)
			assert.Nil(t, p.PasswordHash)
			assert.False(t, p.ClearRefreshTokens)
			return nil
		})
		m.repo.EXPECT().FindByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", FullName: "Jane", Phone: "+6281"}, nil)

		out, err := s.UpdateProfile(context.Background(), "acc-1", dto.UpdateProfileInput{FullName: &name, Phone: &phone})

		require.NoError(t, err)
		assert.Equal(t, "Jane", out.FullName)
	})

	t.Run("password change revokes sessions", func(t *testing.T) {
		s, m := newTestService(t)
		password := "NewSecret123"

		m.hasher.EXPECT().Hash(password).Return("new-digest", nil)
		m.repo.EXPECT().Update(gomock.Any(), "acc-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, p domain.AccountPatch) error {
			assert.Equal(t, "new-digest", *p.PasswordHash)
			assert.True(t, p.ClearRefreshTokens)
			return nil
		})
		m.repo.EXPECT().FindByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", PasswordHash: "new-digest"}, nil)

		_, err := s.UpdateProfile(context.Background(), "acc-1", dto.UpdateProfileInput{Password: &password})

		require.NoError(t, err)
	})

	t.Run("long photo url is stored whole", func(t *testing.T) {
		s, m := newTestService(t)
		photo := "https://cdn.example.com/photos/" + strings.Repeat("b", 292) + ".png"

		m.repo.EXPECT().Update(gomock.Any(), "acc-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, p domain.AccountPatch) error {
			assert.Equal(t, photo, *p.PhotoURL)
			return nil
		})
		m.repo.EXPECT().FindByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", PhotoURL: photo}, nil)

		out, err := s.UpdateProfile(context.Background(), "acc-1", dto.UpdateProfileInput{PhotoURL: &photo})

		require.NoError(t, err)
		assert.Equal(t, photo, out.PhotoURL)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		s, _ := newTestService(t)
		blank, weak := "   ", "short"

		_, err := s.UpdateProfile(context.Background(), "acc-1", dto.UpdateProfileInput{FullName: &blank})
		assert.True(t, autherror.IsValidation(err))

		_, err = s.UpdateProfile(context.Background(), "acc-1", dto.UpdateProfileInput{Password: &weak})
		assert.True(t, autherror.IsValidation(err))

		_, err = s.UpdateProfile(context.Background(), "acc-1", dto.UpdateProfileInput{})
		assert.True(t, autherror.IsValidation(err))
	})
}
