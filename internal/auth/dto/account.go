package dto

import (
	"time"

	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/domain"
	authconstant "github.com/AnthoniusHendriyanto/travel-auth/pkg/constant"
)

// AccountOutput is the only shape in which an account leaves the service.
// Fields are listed explicitly: anything not named here is never serialized.
type AccountOutput struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	Phone       string     `json:"phone"`
	PhotoURL    string     `json:"photoUrl"`
	AuthMethods []string   `json:"authMethods"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

func NewAccountOutput(a *domain.Account) AccountOutput {
	methods := make([]string, 0, 2)
	if a.HasPassword() {
		methods = append(methods, authconstant.AuthMethodPassword)
	}
	if a.FederatedUID != "" {
		methods = append(methods, authconstant.AuthMethodFederated)
	}

	return AccountOutput{
		ID:          a.ID,
		Email:       a.Email,
		FullName:    a.FullName,
		Phone:       a.Phone,
		PhotoURL:    a.PhotoURL,
		AuthMethods: methods,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		LastLoginAt: a.LastLoginAt,
	}
}
