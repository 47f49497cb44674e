package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnthoniusHendriyanto/travel-auth/config"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/validation"
	autherror "github.com/AnthoniusHendriyanto/travel-auth/internal/errors"
	authconstant "github.com/AnthoniusHendriyanto/travel-auth/pkg/constant"
)

const (
	msgEmailRequired       = "Valid email is required"
	msgPasswordRequired    = "Password is required for email signup"
	msgWeakPassword        = "Password must be at least 8 characters with upper, lower, and a number"
	msgInvalidPhotoURL     = "Photo URL must be a valid http(s) URL"
	msgCredentialsRequired = "Email and password are required"
	msgRefreshRequired     = "refreshToken is required"
	msgEmptyFullName       = "Full name cannot be empty"
	msgNothingToUpdate     = "No updatable fields provided"
)

// AccountService composes the credential store, password hasher, token issuer
// and federated identity verifier into the account authentication flows.
type AccountService struct {
	repo                   domain.AccountRepository
	tokenService           TokenGenerator
	hasher                 PasswordHasher
	verifier               domain.IdentityVerifier
	log                    *slog.Logger
	maxActiveTokensPerUser int
}

func NewAccountService(
	repo domain.AccountRepository,
	tokenService TokenGenerator,
	hasher PasswordHasher,
	verifier domain.IdentityVerifier,
	cfg *config.Config,
	log *slog.Logger,
) *AccountService {
	maxTokens := cfg.MaxActiveRefreshTokens
	if maxTokens <= 0 {
		maxTokens = authconstant.DefaultMaxRefreshTokens
	}
	if log == nil {
		log = slog.Default()
	}
	return &AccountService{
		repo:                   repo,
		tokenService:           tokenService,
		hasher:                 hasher,
		verifier:               verifier,
		log:                    log,
		maxActiveTokensPerUser: maxTokens,
	}
}

func (s *AccountService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	email := validation.NormalizeEmail(input.Email)
	if !validation.Email(email) {
		return nil, autherror.NewValidationError(msgEmailRequired)
	}

	federatedUID := validation.SanitizeString(input.FederatedUID)
	if input.Password == "" && federatedUID == "" {
		return nil, autherror.NewValidationError(msgPasswordRequired)
	}
	if input.Password != "" && !validation.StrongPassword(input.Password) {
		return nil, autherror.NewValidationError(msgWeakPassword)
	}

	photo := validation.SanitizeURL(input.PhotoURL)
	if !validation.PhotoURL(photo) {
		return nil, autherror.NewValidationError(msgInvalidPhotoURL)
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	var passwordHash string
	if input.Password != "" {
		passwordHash, err = s.hasher.Hash(input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	fullName := validation.SanitizeString(input.FullName)
	if fullName == "" {
		fullName = authconstant.DefaultFullName
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Email:         email,
		FederatedUID:  federatedUID,
		FullName:      fullName,
		Phone:         validation.SanitizeString(input.Phone),
		PhotoURL:      photo,
		PasswordHash:  passwordHash,
		RefreshTokens: []string{},
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.insert(ctx, account); err != nil {
		return nil, err
	}

	resp := &dto.AuthResponse{Account: dto.NewAccountOutput(account)}

	// A client-supplied federated UID is unproven: the account only gets a
	// session once a verified token for that UID is presented to FederatedLogin.
	if passwordHash == "" {
		s.log.InfoContext(ctx, "account registered pending federated login", "account_id", account.ID)
		return resp, nil
	}

	resp.TokenResponse, err = s.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "account registered", "account_id", account.ID)
	return resp, nil
}

// Login authenticates with email and password. An unknown email, an account
// without a password and a wrong password all yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	if input.Email == "" || input.Password == "" {
		return nil, autherror.NewValidationError(msgCredentialsRequired)
	}

	account, err := s.repo.FindByEmail(ctx, validation.NormalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if account == nil {
		s.log.InfoContext(ctx, "login failed", "reason", "unknown email", "ip", input.IPAddress)
		return nil, autherror.ErrInvalidCredentials
	}

	if err := s.hasher.Verify(input.Password, account.PasswordHash); err != nil {
		reason := "password mismatch"
		if errors.Is(err, autherror.ErrNoPasswordSet) {
			reason = "no password set"
		}
		s.log.InfoContext(ctx, "login failed", "reason", reason, "account_id", account.ID, "ip", input.IPAddress)
		return nil, autherror.ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, autherror.ErrAccountDisabled
	}

	if err := s.touchLogin(ctx, account, domain.AccountPatch{}); err != nil {
		return nil, err
	}

	tokens, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{TokenResponse: tokens, Account: dto.NewAccountOutput(account)}, nil
}

// FederatedLogin exchanges a verified external identity token for a local
// session. Accounts are matched by email; a matching password account gets
// the federated UID attached instead of a duplicate being created. An account
// already bound to a different UID is refused.
func (s *AccountService) FederatedLogin(ctx context.Context, idToken string) (*dto.AuthResponse, error) {
	if idToken == "" {
		return nil, autherror.ErrInvalidFederatedToken
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, autherror.ErrFederatedUnavailable) {
			return nil, err
		}
		s.log.InfoContext(ctx, "federated token rejected", "error", err)
		return nil, autherror.ErrInvalidFederatedToken
	}

	uid := validation.SanitizeString(identity.UID)
	if uid == "" {
		s.log.InfoContext(ctx, "federated token rejected", "reason", "missing subject")
		return nil, autherror.ErrInvalidFederatedToken
	}

	email := validation.NormalizeEmail(identity.Email)
	if !validation.Email(email) {
		return nil, autherror.ErrFederatedEmailMissing
	}

	account, created, err := s.findOrCreateFederated(ctx, identity, uid, email)
	if err != nil {
		return nil, err
	}

	if !account.IsActive {
		return nil, autherror.ErrAccountDisabled
	}

	if account.FederatedUID != "" && account.FederatedUID != uid {
		s.log.WarnContext(ctx, "federated login rejected", "reason", "uid mismatch", "account_id", account.ID)
		return nil, autherror.ErrInvalidFederatedToken
	}

	if !created {
		var patch domain.AccountPatch
		if account.FederatedUID == "" {
			patch.FederatedUID = &uid
			account.FederatedUID = uid
		}
		if err := s.touchLogin(ctx, account, patch); err != nil {
			return nil, err
		}
	}

	tokens, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{TokenResponse: tokens, Account: dto.NewAccountOutput(account)}, nil
}

func (s *AccountService) findOrCreateFederated(ctx context.Context, identity *domain.FederatedIdentity, uid, email string) (*domain.Account, bool, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if account != nil {
		return account, false, nil
	}

	fullName := validation.SanitizeString(identity.Name)
	if fullName == "" {
		fullName = authconstant.DefaultFederatedFullName
	}
	photo := validation.SanitizeURL(identity.Picture)
	if !validation.PhotoURL(photo) {
		photo = ""
	}

	now := time.Now().UTC()
	account = &domain.Account{
		Email:         email,
		FederatedUID:  uid,
		FullName:      fullName,
		Phone:         validation.SanitizeString(identity.PhoneNumber),
		PhotoURL:      photo,
		RefreshTokens: []string{},
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastLoginAt:   &now,
	}

	err = s.insert(ctx, account)
	if errors.Is(err, autherror.ErrEmailAlreadyInUse) {
		// A concurrent first login created the account between find and insert.
		existing, findErr := s.repo.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, false, findErr
		}
		if existing == nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.log.InfoContext(ctx, "account created from federated login", "account_id", account.ID)
	return account, true, nil
}

// Refresh rotates a refresh token: the presented token must verify and still
// be stored for the account. It is swapped for a new one in a single store
// operation, so a token can be used at most once.
func (s *AccountService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.TokenResponse, error) {
	if input.RefreshToken == "" {
		return nil, autherror.NewValidationError(msgRefreshRequired)
	}

	claims, err := s.tokenService.VerifyRefresh(input.RefreshToken)
	if err != nil {
		s.log.DebugContext(ctx, "refresh token rejected", "error", err)
		return nil, autherror.ErrUnauthorized
	}

	account, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.IsActive || !account.HasRefreshToken(input.RefreshToken) {
		return nil, autherror.ErrUnauthorized
	}

	newRefreshToken, err := s.tokenService.IssueRefresh(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = s.repo.RotateRefreshToken(ctx, account.ID, input.RefreshToken, newRefreshToken, s.maxActiveTokensPerUser)
	if errors.Is(err, autherror.ErrRefreshTokenNotFound) {
		// Lost a race against another rotation or a logout of the same token.
		return nil, autherror.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	accessToken, err := s.tokenService.IssueAccess(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return s.tokenResponse(accessToken, newRefreshToken), nil
}

// Logout revokes the given refresh token when it can be attributed to an
// account. It never fails: invalid, expired or unknown tokens are ignored.
func (s *AccountService) Logout(ctx context.Context, input dto.LogoutInput) {
	if input.RefreshToken == "" {
		return
	}

	claims, err := s.tokenService.VerifyRefresh(input.RefreshToken)
	if err != nil {
		s.log.DebugContext(ctx, "logout with unverifiable token", "error", err)
		return
	}

	if err := s.repo.RemoveRefreshToken(ctx, claims.UserID, input.RefreshToken); err != nil {
		s.log.WarnContext(ctx, "failed to remove refresh token on logout", "account_id", claims.UserID, "error", err)
	}
}

// Me returns the sanitized account of the authenticated caller.
func (s *AccountService) Me(ctx context.Context, accountID string) (*dto.AccountOutput, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, autherror.ErrAccountNotFound
	}
	out := dto.NewAccountOutput(account)
	return &out, nil
}

// GetAccount returns the account with the given id, which must be the caller's own.
func (s *AccountService) GetAccount(ctx context.Context, callerID, accountID string) (*dto.AccountOutput, error) {
	if callerID != accountID {
		return nil, autherror.ErrForbidden
	}
	return s.Me(ctx, accountID)
}

// UpdateProfile changes the caller's profile fields. A password change
// revokes every existing session of the account.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, input dto.UpdateProfileInput) (*dto.AccountOutput, error) {
	var patch domain.AccountPatch

	if input.FullName != nil {
		name := validation.SanitizeString(*input.FullName)
		if name == "" {
			return nil, autherror.NewValidationError(msgEmptyFullName)
		}
		patch.FullName = &name
	}
	if input.Phone != nil {
		phone := validation.SanitizeString(*input.Phone)
		patch.Phone = &phone
	}
	if input.PhotoURL != nil {
		photo := validation.SanitizeURL(*input.PhotoURL)
		if !validation.PhotoURL(photo) {
			return nil, autherror.NewValidationError(msgInvalidPhotoURL)
		}
		patch.PhotoURL = &photo
	}
	if input.Password != nil {
		if !validation.StrongPassword(*input.Password) {
			return nil, autherror.NewValidationError(msgWeakPassword)
		}
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		patch.PasswordHash = &hash
		patch.ClearRefreshTokens = true
	}

	if patch.IsEmpty() {
		return nil, autherror.NewValidationError(msgNothingToUpdate)
	}

	if err := s.repo.Update(ctx, accountID, patch); err != nil {
		return nil, err
	}

	if patch.ClearRefreshTokens {
		s.log.InfoContext(ctx, "password changed, sessions revoked", "account_id", accountID)
	}
	return s.Me(ctx, accountID)
}

// insert enforces the creation invariants before the account reaches the store.
func (s *AccountService) insert(ctx context.Context, account *domain.Account) error {
	if !account.HasAuthMethod() {
		return autherror.ErrMissingAuthMethod
	}
	id, err := s.repo.Insert(ctx, account)
	if err != nil {
		return err
	}
	account.ID = id
	return nil
}

func (s *AccountService) touchLogin(ctx context.Context, account *domain.Account, patch domain.AccountPatch) error {
	now := time.Now().UTC()
	patch.LastLoginAt = &now
	if err := s.repo.Update(ctx, account.ID, patch); err != nil {
		return err
	}
	account.LastLoginAt = &now
	account.UpdatedAt = now
	return nil
}

// issueSession mints an access/refresh pair and stores the refresh token,
// evicting the oldest session once the cap is reached.
func (s *AccountService) issueSession(ctx context.Context, account *domain.Account) (*dto.TokenResponse, error) {
	accessToken, err := s.tokenService.IssueAccess(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.tokenService.IssueRefresh(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.repo.PushRefreshToken(ctx, account.ID, refreshToken, s.maxActiveTokensPerUser); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return s.tokenResponse(accessToken, refreshToken), nil
}

func (s *AccountService) tokenResponse(accessToken, refreshToken string) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    authconstant.DefaultTokenType,
		ExpiresIn:    int(s.tokenService.GetAccessTokenExpiry().Seconds()),
	}
}
