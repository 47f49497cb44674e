package dto

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

// AuthResponse is returned by register, login and federated login. The token
// fields are absent when registration did not open a session.
type AuthResponse struct {
	*TokenResponse
	Account AccountOutput `json:"account"`
}
