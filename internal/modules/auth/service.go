package auth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ignitegigs/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLockedOut          = errors.New("too many failed attempts")
)

// LockedOutError carries how long the caller must wait before trying again.
type LockedOutError struct {
	Remaining time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("too many failed attempts, try again in %d minutes", e.Minutes())
}

func (e *LockedOutError) Unwrap() error { return ErrLockedOut }

// Minutes rounds the remaining lockout up to whole minutes.
func (e *LockedOutError) Minutes() int {
	return int(math.Ceil(e.Remaining.Minutes()))
}

type Service struct {
	users  UserRepository
	tokens TokenIssuer
	guard  FailureGuard
	log    zerolog.Logger
	cost   int
}

func NewService(users UserRepository, tokens TokenIssuer, guard FailureGuard, log zerolog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		guard:  guard,
		log:    log.With().Str("component", "auth").Logger(),
		cost:   bcrypt.DefaultCost,
	}
}

type Result struct {
	User        *domain.User
	PerformerID string
	Token       string
}

// Register creates a client or performer account. Performers get an active
// profile in the same transaction.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	role := domain.UserRole(req.Role)
	if role != domain.RoleClient && role != domain.RolePerformer {
		return nil, domain.Validation("user_type must be client or performer")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
	}

	var performerID string
	if role == domain.RolePerformer {
		profile := &domain.PerformerProfile{
			ID:           uuid.NewString(),
			StageName:    strings.TrimSpace(req.StageName),
			LocationName: strings.TrimSpace(req.LocationName),
			HourlyRate:   req.HourlyRate,
			EventRate:    req.EventRate,
			MinRate:      req.MinRate,
			IsActive:     true,
		}
		if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
			return nil, err
		}
		performerID = profile.ID
	} else if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("account registered")

	user.PasswordHash = ""
	return &Result{User: user, PerformerID: performerID, Token: token}, nil
}

// Login checks credentials under the lockout guard. key identifies the
// caller (login:ip); every bad attempt counts against it and a success
// clears it.
func (s *Service) Login(ctx context.Context, key string, req LoginRequest) (*Result, error) {
	if remaining := s.guard.IsLockedOut(key); remaining > 0 {
		return nil, &LockedOutError{Remaining: remaining}
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.guard.RecordFailure(key)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.guard.RecordFailure(key)
		s.log.Warn().Str("key", key).Msg("failed login")
		return nil, ErrInvalidCredentials
	}

	s.guard.ClearFailures(key)
	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	user.PasswordHash = ""
	return &Result{User: user, Token: token}, nil
}

// Me returns the caller's own account.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}
