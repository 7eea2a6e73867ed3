// Package users implements account registration, login, and the session
// lifecycle for Pocketlist. A user owns a collection of live session tokens:
// login appends one, logout removes one, and every authenticated request
// proves its token is still present in that collection. Removing the entry
// is the only way a session ends -- tokens carry no expiry.
package users

import "time"

// User represents a registered account. The password is only ever stored as
// an argon2id hash.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	CreatedAt    time.Time `json:"createdAt"`
}

// SessionToken is one live session entry in a user's token collection.
// Access is always "auth"; the field mirrors what the signed token encodes
// so the stored row and the credential agree on their purpose.
type SessionToken struct {
	Access string `json:"access"`
	Token  string `json:"token"`
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the registration payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest holds the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the input for creating a new account.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput is the input for authenticating an account.
type LoginInput struct {
	Email    string
	Password string
}
