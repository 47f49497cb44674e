package domain

import "time"

// Account is a person who can authenticate, either with a password, a
// federated identity, or both.
type Account struct {
	ID            string
	Email         string
	FederatedUID  string
	FullName      string
	Phone         string
	PhotoURL      string
	PasswordHash  string
	RefreshTokens []string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginAt   *time.Time
}

// HasPassword reports whether password login is possible for the account.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// HasAuthMethod reports whether at least one way to authenticate is set.
func (a *Account) HasAuthMethod() bool {
	return a.PasswordHash != "" || a.FederatedUID != ""
}

// HasRefreshToken reports whether token is one of the account's live sessions.
func (a *Account) HasRefreshToken(token string) bool {
	for _, t := range a.RefreshTokens {
		if t == token {
			return true
		}
	}
	return false
}

// AccountPatch lists the fields an update may change. Nil fields are left untouched.
type AccountPatch struct {
	FullName     *string
	Phone        *string
	PhotoURL     *string
	FederatedUID *string
	PasswordHash *string
	IsActive     *bool
	LastLoginAt  *time.Time

	// ClearRefreshTokens revokes every session of the account.
	ClearRefreshTokens bool
}

// IsEmpty reports whether applying the patch would change nothing but UpdatedAt.
func (p AccountPatch) IsEmpty() bool {
	return p.FullName == nil && p.Phone == nil && p.PhotoURL == nil &&
		p.FederatedUID == nil && p.PasswordHash == nil && p.IsActive == nil &&
		p.LastLoginAt == nil && !p.ClearRefreshTokens
}

// FederatedIdentity is the decoded claim set of a verified external identity token.
type FederatedIdentity struct {
	UID         string
	Email       string
	Name        string
	Picture     string
	PhoneNumber string
}
