package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dialytrack/dialytrack/internal/platform/auth"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// -- Mock Repository --

type mockUserRepo struct {
	store map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{store: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.store[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.store[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.store {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.store[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.store[u.ID] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, limit, offset int) ([]*User, int, error) {
	var r []*User
	for _, u := range m.store {
		if role != "" && u.Role != role {
			continue
		}
		r = append(r, u)
	}
	return r, len(r), nil
}

func (m *mockUserRepo) ListActiveEmailsByRole(_ context.Context, role string) ([]string, error) {
	var emails []string
	for _, u := range m.store {
		if u.Role == role && u.Active {
			emails = append(emails, u.Email)
		}
	}
	return emails, nil
}

func newTestService() *Service {
	return NewService(newMockUserRepo(), testSecret)
}

// -- Service Tests --

func TestCreateUser_Success(t *testing.T) {
	svc := newTestService()
	u := &User{Email: "tech@hospital.test", FullName: "Sam Ruiz", Role: auth.RoleTechnician}
	if err := svc.CreateUser(context.Background(), u, "s3cret-pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret-pass" {
		t.Error("expected password to be hashed")
	}
	if !u.Active {
		t.Error("expected new user to be active")
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc := newTestService()
	u := &User{Email: "x@y.test", FullName: "X", Role: "superuser"}
	if err := svc.CreateUser(context.Background(), u, "s3cret-pass"); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestCreateUser_ShortPassword(t *testing.T) {
	svc := newTestService()
	u := &User{Email: "x@y.test", FullName: "X", Role: auth.RolePatient}
	if err := svc.CreateUser(context.Background(), u, "short"); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestAuthenticate_Success(t *testing.T) {
	svc := newTestService()
	u := &User{Email: "tech@hospital.test", FullName: "Sam Ruiz", Role: auth.RoleTechnician}
	svc.CreateUser(context.Background(), u, "s3cret-pass")

	resp, err := svc.Authenticate(context.Background(), Credentials{
		Email: "tech@hospital.test", Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.ID != u.ID {
		t.Error("user mismatch")
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc := newTestService()
	u := &User{Email: "tech@hospital.test", FullName: "Sam Ruiz", Role: auth.RoleTechnician}
	svc.CreateUser(context.Background(), u, "s3cret-pass")

	if _, err := svc.Authenticate(context.Background(), Credentials{
		Email: "tech@hospital.test", Password: "wrong",
	}); err == nil {
		t.Fatal("expected error for wrong password")
	}
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	svc := newTestService()
	u := &User{Email: "tech@hospital.test", FullName: "Sam Ruiz", Role: auth.RoleTechnician}
	svc.CreateUser(context.Background(), u, "s3cret-pass")
	u.Active = false
	svc.UpdateUser(context.Background(), u)

	if _, err := svc.Authenticate(context.Background(), Credentials{
		Email: "tech@hospital.test", Password: "s3cret-pass",
	}); err == nil {
		t.Fatal("expected error for inactive user")
	}
}

func TestListTechnicianEmails(t *testing.T) {
	svc := newTestService()
	svc.CreateUser(context.Background(), &User{Email: "t1@hospital.test", FullName: "T1", Role: auth.RoleTechnician}, "s3cret-pass")
	svc.CreateUser(context.Background(), &User{Email: "t2@hospital.test", FullName: "T2", Role: auth.RoleTechnician}, "s3cret-pass")
	svc.CreateUser(context.Background(), &User{Email: "p@hospital.test", FullName: "P", Role: auth.RolePatient}, "s3cret-pass")

	emails, err := svc.ListTechnicianEmails(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emails) != 2 {
		t.Errorf("expected 2 technician emails, got %d: %v", len(emails), emails)
	}
}
