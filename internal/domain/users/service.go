package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"petverse/internal/ports/auth"
)

const (
	minNameLen     = 2
	minPasswordLen = 6
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrGoogleDisabled     = errors.New("google sign-in not configured")
	ErrIdentityRejected   = errors.New("invalid google token")
)

// Session es lo que devuelven los endpoints /auth/*.
type Session struct {
	AccessToken string
	TokenType   string
	User        User
}

type Service struct {
	repo     Repository
	prefs    PreferencesRepository
	issuer   auth.TokenIssuer
	identity auth.IdentityVerifier // nil => Google deshabilitado
	now      func() time.Time
	hashCost int
}

func NewService(repo Repository, prefs PreferencesRepository, issuer auth.TokenIssuer, identity auth.IdentityVerifier) *Service {
	return &Service{
		repo:     repo,
		prefs:    prefs,
		issuer:   issuer,
		identity: identity,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < minNameLen {
		return Session{}, fmt.Errorf("%w: name must have at least %d characters", ErrInvalidInput, minNameLen)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Session{}, err
	}
	if len(in.Password) < minPasswordLen {
		return Session{}, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u, err := s.repo.Create(ctx, User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleTutor,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, u)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Session{}, err
	}
	if len(password) < minPasswordLen {
		return Session{}, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if u.PasswordHash == "" {
		// cuenta creada con Google
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// LoginWithGoogle valida el id_token y crea el usuario la primera vez (rol tutor).
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (Session, error) {
	if s.identity == nil {
		return Session{}, ErrGoogleDisabled
	}
	if strings.TrimSpace(idToken) == "" {
		return Session{}, fmt.Errorf("%w: id_token is required", ErrInvalidInput)
	}

	id, err := s.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrIdentityRejected, err)
	}
	email, err := normalizeEmail(id.Email)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrIdentityRejected, err)
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		now := s.now()
		u, err = s.repo.Create(ctx, User{
			Name:      strings.TrimSpace(id.Name),
			Email:     email,
			Role:      RoleTutor,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, u)
}

func (s *Service) Me(ctx context.Context, userID int64) (User, error) {
	if userID <= 0 {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) Settings(ctx context.Context, userID int64) (Settings, error) {
	return s.prefs.GetSettings(ctx, userID)
}

func (s *Service) UpdateSettings(ctx context.Context, userID int64, patch Settings) (Settings, error) {
	current, err := s.prefs.GetSettings(ctx, userID)
	if err != nil {
		return Settings{}, err
	}
	merged := current.Merge(patch)
	if err := s.prefs.SaveSettings(ctx, userID, merged); err != nil {
		return Settings{}, err
	}
	return merged, nil
}

func (s *Service) Address(ctx context.Context, userID int64) (Address, error) {
	return s.prefs.GetAddress(ctx, userID)
}

func (s *Service) UpdateAddress(ctx context.Context, userID int64, patch Address) (Address, error) {
	if patch.Lat != nil && (*patch.Lat < -90 || *patch.Lat > 90) {
		return Address{}, fmt.Errorf("%w: lat out of range", ErrInvalidInput)
	}
	if patch.Lng != nil && (*patch.Lng < -180 || *patch.Lng > 180) {
		return Address{}, fmt.Errorf("%w: lng out of range", ErrInvalidInput)
	}
	current, err := s.prefs.GetAddress(ctx, userID)
	if err != nil {
		return Address{}, err
	}
	merged := current.Merge(patch)
	if err := s.prefs.SaveAddress(ctx, userID, merged); err != nil {
		return Address{}, err
	}
	return merged, nil
}

func (s *Service) issue(ctx context.Context, u User) (Session, error) {
	tok, err := s.issuer.Issue(ctx, auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{AccessToken: tok, TokenType: s.issuer.TokenType(), User: u}, nil
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return strings.ToLower(addr.Address), nil
}
