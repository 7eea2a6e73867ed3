package users

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/pocketlist/pocketlist/internal/apperror"
	"github.com/pocketlist/pocketlist/internal/ident"
	"github.com/pocketlist/pocketlist/internal/token"
)

// Field constraints for registration input. The password floor matches the
// original account model; the ceiling keeps argon2 input bounded.
const (
	maxEmailLen    = 255
	minPasswordLen = 6
	maxPasswordLen = 128
)

// emailRx is a deliberately loose shape check: something@something.something.
// Real validation happens when mail is actually delivered; this only rejects
// obviously malformed input.
var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// argon2id parameters following OWASP recommendations for argon2id:
// memory=64MB, iterations=3, parallelism=4.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64 MB in KiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Service defines the business logic contract for accounts and sessions.
// Handlers call these methods -- they never touch the repository directly.
type Service interface {
	// Register creates an account and mints its first session token.
	Register(ctx context.Context, input RegisterInput) (*User, string, error)

	// Login authenticates by email/password and mints a fresh session token,
	// appending it to the user's token collection.
	Login(ctx context.Context, input LoginInput) (*User, string, error)

	// FindByToken resolves a presented token to its user. The token must both
	// verify cryptographically and still be live in the user's collection.
	FindByToken(ctx context.Context, tok string) (*User, error)

	// RevokeToken removes one token from the user's collection. Idempotent.
	RevokeToken(ctx context.Context, userID, tok string) error

	// GetByID loads a user by identity.
	GetByID(ctx context.Context, id string) (*User, error)
}

// userService implements Service with argon2id hashing and signed session
// tokens persisted per user.
type userService struct {
	repo   UserRepository
	tokens *token.Service
}

// NewService creates a new user service with the given dependencies.
func NewService(repo UserRepository, tokens *token.Service) Service {
	return &userService{repo: repo, tokens: tokens}
}

// Register creates a new account. It validates the input, checks email
// uniqueness, hashes the password with argon2id, persists the user, and
// issues the first session token.
func (s *userService) Register(ctx context.Context, input RegisterInput) (*User, string, error) {
	email := strings.TrimSpace(input.Email)
	if err := validateCredentials(email, input.Password); err != nil {
		return nil, "", err
	}

	// Check if email is already taken before doing expensive hashing. The
	// UNIQUE index still backstops a concurrent duplicate.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, "", apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, "", apperror.NewConflict("an account with this email already exists")
	}

	// Hash the password with argon2id (memory-hard, GPU-resistant).
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, "", apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		ID:           ident.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, "", appErr
		}
		return nil, "", apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	tok, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return user, tok, nil
}

// Login authenticates a user by email and password. On success it mints a
// fresh session token and appends it to the user's token collection.
func (s *userService) Login(ctx context.Context, input LoginInput) (*User, string, error) {
	email := strings.TrimSpace(input.Email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// Don't reveal whether the email exists -- same message either way.
		if apperror.SafeCode(err) == 404 {
			return nil, "", apperror.NewUnauthorized("invalid email or password")
		}
		return nil, "", apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	// Verify the password against the stored argon2id hash.
	if !verifyPassword(input.Password, user.PasswordHash) {
		return nil, "", apperror.NewUnauthorized("invalid email or password")
	}

	tok, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return user, tok, nil
}

// FindByToken resolves a presented token to its user. Signature verification
// proves who the token was issued to; the liveness check against the user's
// token collection proves it has not been revoked since.
func (s *userService) FindByToken(ctx context.Context, tok string) (*User, error) {
	claims, err := s.tokens.Verify(tok)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.SafeCode(err) == 404 {
			return nil, apperror.NewUnauthorized("invalid session token")
		}
		return nil, apperror.NewInternal(fmt.Errorf("loading token owner: %w", err))
	}

	live, err := s.repo.HasToken(ctx, user.ID, tok)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking token liveness: %w", err))
	}
	if !live {
		// Well-formed signature but revoked (or never recorded) -- dead session.
		return nil, apperror.NewUnauthorized("invalid session token")
	}

	return user, nil
}

// RevokeToken removes the matching entry from the user's token collection.
// Revoking a token that is already gone succeeds without effect.
func (s *userService) RevokeToken(ctx context.Context, userID, tok string) error {
	if err := s.repo.RemoveToken(ctx, userID, tok); err != nil {
		return apperror.NewInternal(fmt.Errorf("revoking token: %w", err))
	}

	slog.Info("session revoked",
		slog.String("user_id", userID),
	)

	return nil
}

// GetByID loads a user by identity.
func (s *userService) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("loading user: %w", err))
	}
	return user, nil
}

// issueToken mints a signed token and appends it to the user's collection,
// completing the login transaction.
func (s *userService) issueToken(ctx context.Context, userID string) (string, error) {
	tok, err := s.tokens.Issue(userID)
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("issuing token: %w", err))
	}

	if err := s.repo.AddToken(ctx, userID, token.AccessAuth, tok); err != nil {
		return "", apperror.NewInternal(fmt.Errorf("recording token: %w", err))
	}

	return tok, nil
}

// validateCredentials checks the registration input shape. Field-level
// failures surface as validation errors with a specific message.
func validateCredentials(email, password string) error {
	if email == "" {
		return apperror.NewValidation("email is required")
	}
	if len(email) > maxEmailLen {
		return apperror.NewValidation("email must be at most 255 characters")
	}
	if !emailRx.MatchString(email) {
		return apperror.NewValidation("email is not a valid address")
	}
	if password == "" {
		return apperror.NewValidation("password is required")
	}
	if len(password) < minPasswordLen {
		return apperror.NewValidation("password must be at least 6 characters")
	}
	if len(password) > maxPasswordLen {
		return apperror.NewValidation("password must be at most 128 characters")
	}
	return nil
}

// --- Password Hashing (argon2id) ---

// hashPassword creates an argon2id hash of the given password. The output
// format is: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
// This format is compatible with most argon2 libraries and allows self-
// contained verification without separate salt storage.
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	// Encode to the standard PHC string format.
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads, b64Salt, b64Hash)

	return encoded, nil
}

// verifyPassword checks a plaintext password against an argon2id hash string.
// Returns true if the password matches.
func verifyPassword(password, encodedHash string) bool {
	// Parse the encoded hash to extract parameters, salt, and hash.
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	// Compute the hash of the provided password with the same parameters.
	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Constant-time comparison to prevent timing attacks.
	return subtle.ConstantTimeCompare(expectedHash, computedHash) == 1
}
