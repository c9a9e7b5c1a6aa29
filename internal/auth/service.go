package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/complyra/complyra/internal/audit"
	"github.com/complyra/complyra/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
	ErrUserNotFound       = errors.New("auth: user not found")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Login lockout policy: after maxFailedAttempts consecutive failures the
// account is locked for lockoutDuration. The counter resets on success.
const (
	maxFailedAttempts = 5
	lockoutDuration   = 15 * time.Minute
)

// Service provides authentication operations: registration, password login
// with lockout, and token refresh. Every login outcome leaves an audit event;
// the writes are isolated so a broken trail never blocks a login.
type Service struct {
	actors     domain.ActorRepository
	recorder   *audit.Recorder
	db         audit.Execer
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new auth service. db carries the audit writes.
func NewService(actors domain.ActorRepository, recorder *audit.Recorder, db audit.Execer, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		actors:     actors,
		recorder:   recorder,
		db:         db,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register creates a new actor with email/password. The password is hashed
// with argon2id before storage.
func (s *Service) Register(ctx context.Context, companyID *uuid.UUID, email, password, fullName, role string) (*domain.Actor, error) {
	existing, err := s.actors.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.Register: %w", ErrUserAlreadyExists)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	if role == "" {
		role = "contributor"
	}

	now := time.Now()
	actor := &domain.Actor{
		ID:           uuid.New(),
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.actors.Create(ctx, actor); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	return actor, nil
}

// Login validates email/password and returns access + refresh JWT tokens.
// A locked account fails with domain.ErrLocked before the password is even
// checked; too many failures lock the account for lockoutDuration.
func (s *Service) Login(ctx context.Context, email, password, ip string) (accessToken, refreshToken string, err error) {
	now := time.Now()

	actor, err := s.actors.GetByEmail(ctx, email)
	if err != nil {
		s.recordLogin(ctx, nil, domain.AuditLoginFailed, ip, map[string]any{"email": email, "reason": "unknown_email"})
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !actor.IsActive {
		s.recordLogin(ctx, actor, domain.AuditLoginFailed, ip, map[string]any{"reason": "inactive"})
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if actor.LockedUntil != nil && actor.LockedUntil.After(now) {
		s.recordLogin(ctx, actor, domain.AuditLoginBlockedLockout, ip, map[string]any{
			"locked_until": actor.LockedUntil.UTC().Format(time.RFC3339),
		})
		return "", "", fmt.Errorf("auth.Login: %w", domain.ErrLocked)
	}

	if !verifyPassword(password, actor.PasswordHash) {
		failed := actor.FailedLoginAttempts + 1

		var lockedUntil *time.Time
		action := domain.AuditLoginFailed
		meta := map[string]any{"failed_attempts": failed}
		if failed >= maxFailedAttempts {
			until := now.Add(lockoutDuration)
			lockedUntil = &until
			action = domain.AuditAccountLocked
			meta["locked_until"] = until.UTC().Format(time.RFC3339)
		}

		audit.Isolate(ctx, "auth.login_state", func(ctx context.Context) error {
			return s.actors.UpdateLoginState(ctx, actor.ID, failed, lockedUntil, actor.LastLoginAt)
		})
		s.recordLogin(ctx, actor, action, ip, meta)

		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	// Success: reset the counter and clear any expired lock.
	audit.Isolate(ctx, "auth.login_state", func(ctx context.Context) error {
		return s.actors.UpdateLoginState(ctx, actor.ID, 0, nil, &now)
	})
	s.recordLogin(ctx, actor, domain.AuditLoginSuccess, ip, nil)

	accessToken, err = IssueAccessToken(s.jwtSecret, actor.ID, actor.CompanyID, actor.Role, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	refreshToken, err = IssueRefreshToken(s.jwtSecret, actor.ID, actor.CompanyID, actor.Role, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RefreshToken validates a refresh token and issues a new access token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: invalid user id: %w", err)
	}

	// Verify the actor still exists and fetch the current role.
	actor, err := s.actors.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrUserNotFound)
	}
	if !actor.IsActive {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}

	newAccess, err := IssueAccessToken(s.jwtSecret, actor.ID, actor.CompanyID, actor.Role, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	return newAccess, nil
}

// GetActor returns an actor by ID (for middleware use).
func (s *Service) GetActor(ctx context.Context, userID uuid.UUID) (*domain.Actor, error) {
	actor, err := s.actors.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("auth.GetActor: %w", err)
	}

	return actor, nil
}

// recordLogin writes a login-related audit event as an isolated side effect.
func (s *Service) recordLogin(ctx context.Context, actor *domain.Actor, action, ip string, meta map[string]any) {
	if s.recorder == nil || s.db == nil {
		return
	}

	e := &domain.AuditEvent{
		Action:     action,
		EntityType: "user",
		Metadata:   meta,
		IPAddress:  ip,
	}
	if actor != nil {
		e.ActorID = &actor.ID
		e.EntityID = &actor.ID
		e.CompanyID = actor.CompanyID
	}

	audit.Isolate(ctx, "auth.audit", func(ctx context.Context) error {
		return s.recorder.Record(ctx, s.db, e)
	})
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	// Split salt$hash
	var saltHex, hashHex string
	for i := range len(encoded) {
		if encoded[i] == '$' {
			saltHex = encoded[:i]
			hashHex = encoded[i+1:]
			break
		}
	}

	if saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expectedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	// Constant-time comparison to prevent timing attacks.
	if len(computed) != len(expectedHash) {
		return false
	}

	var diff byte
	for i := range computed {
		diff |= computed[i] ^ expectedHash[i]
	}

	return diff == 0
}
