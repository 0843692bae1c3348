package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/auth"
	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/repository"
	"github.com/kirinyoku/tour-go/internal/service/ratelimit"
)

// DefaultAvatar is assigned to every new account.
const DefaultAvatar = "https://api.dicebear.com/7.x/avataaars/svg?seed=default"

var emailRE = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (domain.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.User, error)
	ListWithStats(ctx context.Context) ([]domain.UserWithStats, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

type TokenIssuer interface {
	Issue(u domain.User) (auth.Token, error)
}

type Service struct {
	users   UserStore
	hasher  PasswordHasher
	issuer  TokenIssuer
	limiter ratelimit.Limiter
}

func New(users UserStore, hasher PasswordHasher, issuer TokenIssuer, limiter ratelimit.Limiter) *Service {
	return &Service{users: users, hasher: hasher, issuer: issuer, limiter: limiter}
}

// ValidEmail reports whether email has an acceptable shape.
func ValidEmail(email string) bool {
	return emailRE.MatchString(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignupInput is a registration request. ClientKey identifies the caller
// for rate limiting, typically its IP address.
type SignupInput struct {
	Name      string
	Email     string
	Password  string
	ClientKey string
}

// Signup registers a new user with the default avatar and role.
//
// Returns:
//   - domain.User: the stored user.
//   - error: an InvalidArgument error for a missing or malformed field.
//   - error: accounts.ErrEmailTaken if the email is already registered.
func (s *Service) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	const op = "service.accounts.Signup"

	if err := ratelimit.Check(ctx, s.limiter, "signup:"+in.ClientKey); err != nil {
		return domain.User{}, fmt.Errorf("%s:%w", op, err)
	}

	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	switch {
	case name == "" || email == "" || in.Password == "":
		return domain.User{}, fmt.Errorf("%s:%w", op, ErrFieldsRequired)
	case !ValidEmail(email):
		return domain.User{}, fmt.Errorf("%s:%w", op, ErrInvalidEmail)
	case len(in.Password) < 6:
		return domain.User{}, fmt.Errorf("%s:%w", op, ErrPasswordTooShort)
	case utf8.RuneCountInString(name) > 50:
		return domain.User{}, fmt.Errorf("%s:%w", op, ErrNameTooLong)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s:%w", op, err)
	}

	u := domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Avatar:       DefaultAvatar,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.User{}, fmt.Errorf("%s:%w", op, ErrEmailTaken)
		}
		return domain.User{}, fmt.Errorf("%s:%w", op, err)
	}

	return u, nil
}

// Session is the result of a successful login.
type Session struct {
	Token auth.Token  `json:"session"`
	User  domain.User `json:"user"`
}

// Login checks credentials and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password, clientKey string) (Session, error) {
	const op = "service.accounts.Login"

	if err := ratelimit.Check(ctx, s.limiter, "login:"+clientKey); err != nil {
		return Session{}, fmt.Errorf("%s:%w", op, err)
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
		}
		return Session{}, fmt.Errorf("%s:%w", op, err)
	}

	if !s.hasher.Verify(u.PasswordHash, password) {
		return Session{}, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
	}

	tok, err := s.issuer.Issue(u)
	if err != nil {
		return Session{}, fmt.Errorf("%s:%w", op, err)
	}

	return Session{Token: tok, User: u}, nil
}

// Profile returns the stored account of actor.
func (s *Service) Profile(ctx context.Context, actor domain.Principal) (domain.User, error) {
	const op = "service.accounts.Profile"

	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}
		return domain.User{}, fmt.Errorf("%s:%w", op, err)
	}

	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, actor domain.Principal, name string) (domain.User, error) {
	const op = "service.accounts.UpdateProfile"

	name = strings.TrimSpace(name)
	switch n := utf8.RuneCountInString(name); {
	case n < 2:
		return domain.User{}, fmt.Errorf("%s:%w", op, ErrNameTooShort)
	case n > 50:
		return domain.User{}, fmt.Errorf("%s:%w", op, ErrNameTooLong)
	}

	u, err := s.users.UpdateName(ctx, actor.UserID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}
		return domain.User{}, fmt.Errorf("%s:%w", op, err)
	}

	return u, nil
}

// CurrentRole reads the role of a user from the store. Token claims may be
// stale after a promotion or demotion, so admin access is decided on this.
func (s *Service) CurrentRole(ctx context.Context, id uuid.UUID) (domain.Role, error) {
	const op = "service.accounts.CurrentRole"

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}
		return "", fmt.Errorf("%s:%w", op, err)
	}

	return u.Role, nil
}

// CheckAdmin reports whether actor's stored role grants administration.
func (s *Service) CheckAdmin(ctx context.Context, actor domain.Principal) (bool, error) {
	role, err := s.CurrentRole(ctx, actor.UserID)
	if err != nil {
		return false, err
	}
	return role.IsAdmin(), nil
}

// ListUsers returns every user with booking count and total spent.
func (s *Service) ListUsers(ctx context.Context, actor domain.Principal) ([]domain.UserWithStats, error) {
	const op = "service.accounts.ListUsers"

	if !actor.Can(domain.CapManageUsers) {
		return nil, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	out, err := s.users.ListWithStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// SetRole changes the role of user id.
//
// Returns:
//   - error: accounts.ErrInvalidRole if role names no known role.
//   - error: accounts.ErrUserNotFound if the user does not exist.
func (s *Service) SetRole(ctx context.Context, actor domain.Principal, id uuid.UUID, role string) (domain.User, error) {
	const op = "service.accounts.SetRole"

	if !actor.Can(domain.CapManageUsers) {
		return domain.User{}, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	r, ok := domain.ParseRole(role)
	if !ok {
		return domain.User{}, fmt.Errorf("%s:%w", op, ErrInvalidRole)
	}

	u, err := s.users.SetRole(ctx, id, r)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}
		return domain.User{}, fmt.Errorf("%s:%w", op, err)
	}

	return u, nil
}

// PromoteByEmail makes the user with email an administrator. It reports
// whether the user already was one, in which case nothing changes.
func (s *Service) PromoteByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	const op = "service.accounts.PromoteByEmail"

	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, false, fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}
		return domain.User{}, false, fmt.Errorf("%s:%w", op, err)
	}

	if u.Role == domain.RoleAdmin {
		return u, true, nil
	}

	u, err = s.users.SetRole(ctx, u.ID, domain.RoleAdmin)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("%s:%w", op, err)
	}

	return u, false, nil
}
