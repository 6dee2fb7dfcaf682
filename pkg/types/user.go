package types

import "github.com/agentfashion/storefront/pkg/enums"

// User is the profile persisted with a session.
type User struct {
	ID       string     `json:"id"`
	Fullname string     `json:"fullname"`
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
}

// AuthGrant is the info object returned by the login endpoint.
type AuthGrant struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	UserID      string `json:"user_id"`
}

// Registration is the info object returned by the register endpoint.
type Registration struct {
	UserID  string `json:"user_id"`
	Success bool   `json:"success"`
}
