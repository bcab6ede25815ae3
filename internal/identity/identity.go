// Package identity maps credentials and provider sign-ins onto users.
package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/storefront/internal/models"
	"github.com/vaughan-dsouza/storefront/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthorized       = errors.New("invalid credentials")
	ErrSignInRejected     = errors.New("sign-in rejected")
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	passwordLower  = regexp.MustCompile(`[a-z]`)
	passwordUpper  = regexp.MustCompile(`[A-Z]`)
	passwordDigit  = regexp.MustCompile(`\d`)
	passwordSymbol = regexp.MustCompile(`[\W_]`)
)

// SignInEvent is what a provider callback reports about the person signing in.
type SignInEvent struct {
	Email        string
	ProviderID   string
	ProviderType string
}

// Principal is a user together with its role name, enough to issue a token.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

type Service struct {
	db  *sqlx.DB
	log zerolog.Logger
}

func NewService(db *sqlx.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log.With().Str("component", "identity").Logger()}
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword requires at least 8 characters with a lower-case letter, an
// upper-case letter, a digit and a symbol.
func ValidPassword(password string) bool {
	return len(password) >= 8 &&
		passwordLower.MatchString(password) &&
		passwordUpper.MatchString(password) &&
		passwordDigit.MatchString(password) &&
		passwordSymbol.MatchString(password)
}

// SignIn reconciles a provider sign-in with the user table:
//
//  1. a known provider id is accepted as is;
//  2. a known email gets a new account for this provider;
//  3. otherwise a user with the DEFAULT role and its account are created.
//
// All writes share one transaction. Any failure rejects the sign-in.
func (s *Service) SignIn(ctx context.Context, ev SignInEvent) (*Principal, error) {
	if ev.Email == "" || ev.ProviderID == "" {
		return nil, fmt.Errorf("%w: email and provider id required", ErrSignInRejected)
	}
	switch ev.ProviderType {
	case models.ProviderGithub, models.ProviderCredentials:
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrSignInRejected, ev.ProviderType)
	}

	var p *Principal
	err := store.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var user *models.User

		acct, err := store.FindAccountByProviderID(ctx, tx, ev.ProviderID)
		switch {
		case err == nil:
			user, err = store.GetUser(ctx, tx, acct.UserID)
			if err != nil {
				return fmt.Errorf("account owner: %w", err)
			}

		case errors.Is(err, store.ErrNotFound):
			user, err = s.linkOrCreate(ctx, tx, ev)
			if err != nil {
				return err
			}

		default:
			return err
		}

		p, err = principal(ctx, tx, user)
		return err
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("provider", ev.ProviderType).
			Str("email", ev.Email).
			Msg("sign-in rejected")
		return nil, fmt.Errorf("%w: %v", ErrSignInRejected, err)
	}
	return p, nil
}

func (s *Service) linkOrCreate(ctx context.Context, tx *sqlx.Tx, ev SignInEvent) (*models.User, error) {
	user, err := store.FindUserByEmail(ctx, tx, ev.Email)
	switch {
	case err == nil:
		s.log.Info().Str("user_id", user.ID).Str("provider", ev.ProviderType).Msg("linking account to existing user")

	case errors.Is(err, store.ErrNotFound):
		role, err := store.GetOrCreateRole(ctx, tx, models.DefaultRole)
		if err != nil {
			return nil, err
		}
		user, err = store.CreateUser(ctx, tx, ev.Email, "", role.ID)
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("user_id", user.ID).Str("provider", ev.ProviderType).Msg("created user on first sign-in")

	default:
		return nil, err
	}

	if _, err := store.CreateAccount(ctx, tx, ev.ProviderID, ev.ProviderType, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates a password user with the DEFAULT role and its
// credentials account.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" || !ValidEmail(email) || !ValidPassword(password) {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *models.User
	err = store.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := store.FindUserByEmail(ctx, tx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		role, err := store.GetOrCreateRole(ctx, tx, models.DefaultRole)
		if err != nil {
			return err
		}

		user, err = store.CreateUser(ctx, tx, email, string(hash), role.ID)
		if err != nil {
			return err
		}

		_, err = store.CreateAccount(ctx, tx, user.ID, models.ProviderCredentials, user.ID)
		return err
	})
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks an email/password pair. Unknown emails, users without a
// password and wrong passwords all yield ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	user, err := store.FindUserByEmail(ctx, s.db, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if !user.Password.Valid {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password.String), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	return principal(ctx, s.db, user)
}

func principal(ctx context.Context, q sqlx.ExtContext, user *models.User) (*Principal, error) {
	role, err := store.GetRole(ctx, q, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("role of user %s: %w", user.ID, err)
	}
	return &Principal{UserID: user.ID, Email: user.Email, Role: role.Name}, nil
}

// Profile reloads a user's principal, picking up role changes made since the
// token was issued.
func (s *Service) Profile(ctx context.Context, userID string) (*Principal, error) {
	user, err := store.GetUser(ctx, s.db, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return principal(ctx, s.db, user)
}
