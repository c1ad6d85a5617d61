package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dialytrack/dialytrack/internal/platform/apperr"
	"github.com/dialytrack/dialytrack/internal/platform/auth"
)

type Service struct {
	users     Repository
	jwtSecret []byte
}

func NewService(users Repository, jwtSecret []byte) *Service {
	return &Service{users: users, jwtSecret: jwtSecret}
}

var validRoles = map[string]bool{
	auth.RoleAdmin: true, auth.RoleTechnician: true, auth.RolePatient: true,
}

func (s *Service) CreateUser(ctx context.Context, u *User, password string) error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return apperr.Invalidf("a valid email is required")
	}
	if u.FullName == "" {
		return apperr.Invalidf("full_name is required")
	}
	if !validRoles[u.Role] {
		return apperr.Invalidf("invalid role: %s", u.Role)
	}
	if len(password) < 8 {
		return apperr.Invalidf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.Active = true
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	if u.Role != "" && !validRoles[u.Role] {
		return apperr.Invalidf("invalid role: %s", u.Role)
	}
	existing, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	if u.PasswordHash == "" {
		u.PasswordHash = existing.PasswordHash
	}
	return s.users.Update(ctx, u)
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, role, limit, offset)
}

// Authenticate verifies the credentials and returns a signed bearer token.
// The same error is returned for unknown email, wrong password and disabled
// accounts so login probes cannot tell them apart.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*TokenResponse, error) {
	u, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !u.Active {
		return nil, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	token, err := auth.IssueToken(s.jwtSecret, u.ID.String(), u.Email, []string{u.Role})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &TokenResponse{Token: token, User: u}, nil
}

// ListTechnicianEmails returns the addresses alert notifications fan out to.
func (s *Service) ListTechnicianEmails(ctx context.Context) ([]string, error) {
	return s.users.ListActiveEmailsByRole(ctx, auth.RoleTechnician)
}
