package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/httpx"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var (
	ErrInvalidEmail  = httpx.BadRequest("invalid email")
	ErrWeakPassword  = httpx.BadRequest("password must be at least 8 characters")
	ErrMissingFields = httpx.BadRequest("missing required fields")
)

type Service struct {
	repo        Repository
	adminEmails []string
}

func NewService(repo Repository, adminEmails []string) *Service {
	return &Service{repo: repo, adminEmails: adminEmails}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" || in.FirstName == "" {
		return User{}, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLen {
		return User{}, ErrWeakPassword
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	role := auth.RoleCustomer
	if auth.IsAdminEmail(email, s.adminEmails) {
		role = auth.RoleAdmin
	}
	return s.repo.Create(ctx, User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         role,
	})
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// ProfileUpdate holds the optional fields a user may change on their profile.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

func (s *Service) UpdateProfile(ctx context.Context, id uint, upd ProfileUpdate) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if upd.FirstName != nil {
		if *upd.FirstName == "" {
			return User{}, httpx.BadRequest("firstName cannot be empty")
		}
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	return s.repo.Update(ctx, u)
}
