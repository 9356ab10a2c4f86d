package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/apperr"
	"jobboard/internal/clock"
	"jobboard/internal/domain"
	"jobboard/internal/mailer"
	"jobboard/internal/repository"
)

// DefaultResetTTL is how long a password reset link stays usable.
const DefaultResetTTL = time.Hour

// TokenIssuer signs bearer tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Delivery reports the outcome of an email sent as part of a workflow. A failed delivery never
// undoes the state change that triggered it.
type Delivery struct {
	Err error
}

func (d Delivery) Failed() bool { return d.Err != nil }

type LoginResult struct {
	Token string
	User  *domain.User
}

// AuthService covers registration, login, email verification and password reset.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, Delivery, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyEmail(ctx context.Context, token string) (*domain.User, error)
	ResendVerification(ctx context.Context, email string) (Delivery, error)
	RequestReset(ctx context.Context, email string) (Delivery, error)
	ConsumeReset(ctx context.Context, token, newPassword string) error
}

type AuthConfig struct {
	// BaseURL is the frontend origin the verify and reset links point to.
	BaseURL      string
	ResetTTL     time.Duration
	EmailTimeout time.Duration
}

type authService struct {
	users  repository.UserRepository
	creds  *Credentials
	tokens TokenIssuer
	mail   mailer.Sender
	clock  clock.Clock
	cfg    AuthConfig
}

func NewAuthService(users repository.UserRepository, creds *Credentials, tokens TokenIssuer, mail mailer.Sender, clk clock.Clock, cfg AuthConfig) AuthService {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = DefaultResetTTL
	}
	if cfg.EmailTimeout <= 0 {
		cfg.EmailTimeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if clk == nil {
		clk = clock.System()
	}
	return &authService{
		users:  users,
		creds:  creds,
		tokens: tokens,
		mail:   mail,
		clock:  clk,
		cfg:    cfg,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, Delivery, error) {
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" {
		return nil, Delivery{}, fieldError("email", "is required")
	}
	if name == "" {
		return nil, Delivery{}, fieldError("name", "is required")
	}

	role := in.Role
	if role == "" {
		role = domain.RoleCandidate
	}
	if !role.Valid() || role == domain.RoleAdmin {
		return nil, Delivery{}, fieldError("role", "must be one of candidate, recruiter")
	}

	// fast path only; the unique index on email is what actually prevents duplicates
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, Delivery{}, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, Delivery{}, apperr.Internal(err)
	}

	hash, err := s.creds.Hash(in.Password)
	if err != nil {
		return nil, Delivery{}, err
	}
	token, err := generateToken()
	if err != nil {
		return nil, Delivery{}, apperr.Internal(err)
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Verification: &domain.EmailVerification{Token: token, IssuedAt: now},
		CreatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Delivery{}, ErrDuplicateEmail.Wrap(err)
		}
		return nil, Delivery{}, apperr.Internal(err)
	}

	delivery := s.send(ctx, mailer.Verification(user.Email, user.Name, s.link("verify-email", token)))
	return sanitizeUser(user), delivery, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundAs(err, ErrInvalidCredentials)
	}
	if !s.creds.Verify(user, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResult{Token: token, User: sanitizeUser(user)}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		return nil, notFoundAs(err, ErrInvalidToken)
	}

	if err := s.users.ConsumeVerification(ctx, user.ID, token); err != nil {
		return nil, notFoundAs(err, ErrInvalidToken)
	}
	user.IsVerified = true
	user.Verification = nil
	return sanitizeUser(user), nil
}

func (s *authService) ResendVerification(ctx context.Context, email string) (Delivery, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return Delivery{}, notFoundAs(err, ErrUserNotFound)
	}
	if user.IsVerified {
		return Delivery{}, ErrAlreadyVerified
	}

	if user.Verification == nil {
		token, err := generateToken()
		if err != nil {
			return Delivery{}, apperr.Internal(err)
		}
		user.Verification = &domain.EmailVerification{Token: token, IssuedAt: s.clock.Now()}
		if err := s.users.Update(ctx, user); err != nil {
			return Delivery{}, apperr.Internal(err)
		}
	}

	return s.send(ctx, mailer.Verification(user.Email, user.Name, s.link("verify-email", user.Verification.Token))), nil
}

func (s *authService) RequestReset(ctx context.Context, email string) (Delivery, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return Delivery{}, notFoundAs(err, ErrUserNotFound)
	}

	token, err := generateToken()
	if err != nil {
		return Delivery{}, apperr.Internal(err)
	}
	user.Reset = &domain.PasswordReset{
		Token:     token,
		ExpiresAt: s.clock.Now().Add(s.cfg.ResetTTL),
	}
	if err := s.users.Update(ctx, user); err != nil {
		return Delivery{}, apperr.Internal(err)
	}

	return s.send(ctx, mailer.PasswordReset(user.Email, user.Name, s.link("reset-password", token), s.cfg.ResetTTL)), nil
}

func (s *authService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidOrExpiredToken
	}
	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		return notFoundAs(err, ErrInvalidOrExpiredToken)
	}
	if user.Reset == nil || user.Reset.Token != token || user.Reset.Expired(s.clock.Now()) {
		return ErrInvalidOrExpiredToken
	}

	hash, err := s.creds.Hash(newPassword)
	if err != nil {
		return err
	}
	// only the request that still finds the token pending gets to set the password
	if err := s.users.ConsumeReset(ctx, user.ID, token, hash); err != nil {
		return notFoundAs(err, ErrInvalidOrExpiredToken)
	}
	return nil
}

func (s *authService) link(path, token string) string {
	return s.cfg.BaseURL + "/" + path + "/" + token
}

// send delivers m detached from the request so a cancelled client does not abort mail for a
// token that is already stored.
func (s *authService) send(ctx context.Context, m mailer.Message) Delivery {
	if s.mail == nil {
		return Delivery{}
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.EmailTimeout)
	defer cancel()
	return Delivery{Err: mailer.Deliver(sendCtx, s.mail, m)}
}
