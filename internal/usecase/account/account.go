package account

import (
	"context"
	"net/mail"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/practice-scheduler/internal/auth"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

const MinPasswordLength = 6

// EmailChecker reports whether an address can plausibly receive mail.
type EmailChecker func(email string) bool

type Input struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      user.Role
}

type Session struct {
	AccessToken string
	User        *models.User
}

type Service struct {
	users      user.Repository
	tokens     *auth.TokenService
	checkEmail EmailChecker
	logger     zerolog.Logger
}

// NewService builds the account flows. checkEmail may be nil.
func NewService(
	users user.Repository,
	tokens *auth.TokenService,
	checkEmail EmailChecker,
	logger zerolog.Logger,
) *Service {
	return &Service{users: users, tokens: tokens, checkEmail: checkEmail, logger: logger}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --------------------------------------------------
// Register / Login
// --------------------------------------------------

// Register creates a CLIENT and signs them in.
func (s *Service) Register(ctx context.Context, in Input) (*Session, error) {
	in.Role = user.RoleClient
	u, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	invalid := httperr.ErrBusiness(httperr.KindUnauthorized, "invalid_credentials", "Invalid email or password")

	u, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			return nil, invalid
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}

	return s.session(u)
}

// --------------------------------------------------
// Admin
// --------------------------------------------------

// CreateUser lets an admin add staff or other admins.
func (s *Service) CreateUser(ctx context.Context, p user.Principal, in Input) (*models.User, error) {
	if !p.IsAdmin() {
		return nil, httperr.ErrForbidden("forbidden", "Only admins can create users")
	}
	if !in.Role.Valid() {
		return nil, httperr.ErrInvalidInput("invalid_role", "role must be CLIENT, PRACTITIONER or ADMIN")
	}
	return s.create(ctx, in)
}

// EnsureAdmin creates the bootstrap admin unless the email already exists.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err == nil {
		return nil
	}
	if !httperr.IsKind(err, httperr.KindNotFound) {
		return err
	}

	u, err := s.create(ctx, Input{
		Email:     email,
		Password:  password,
		FirstName: "Admin",
		Role:      user.RoleAdmin,
	})
	if err != nil {
		return errors.Wrap(err, "bootstrap admin")
	}

	s.logger.Info().Str("user_id", u.ID).Str("email", u.Email).Msg("bootstrap admin created")
	return nil
}

// --------------------------------------------------
// Lookups
// --------------------------------------------------

func (s *Service) Me(ctx context.Context, p user.Principal) (*models.User, error) {
	return s.users.GetUserByID(ctx, p.ID)
}

// EmailExists reports whether an account is registered under email.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return false, httperr.ErrInvalidInput("invalid_request", "email is required")
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case httperr.IsKind(err, httperr.KindNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) ListPractitioners(ctx context.Context) ([]models.User, error) {
	return s.users.ListPractitioners(ctx)
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (s *Service) create(ctx context.Context, in Input) (*models.User, error) {
	email := NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, httperr.ErrInvalidInput("invalid_email", "email is not valid")
	}
	if s.checkEmail != nil && !s.checkEmail(email) {
		return nil, httperr.ErrInvalidInput("invalid_email_domain", "The email domain does not look valid.")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, httperr.ErrInvalidInput("password_too_short", "password must be at least 6 characters")
	}

	first := strings.TrimSpace(in.FirstName)
	if first == "" {
		return nil, httperr.ErrInvalidInput("first_name_required", "first_name is required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    first,
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hashed),
		Role:         string(in.Role),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) session(u *models.User) (*Session, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, User: u}, nil
}
