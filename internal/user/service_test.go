package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/auth"
	userDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/user"
	coreuser "github.com/eventstaff/attendance/internal/core/user"
	"github.com/eventstaff/attendance/internal/employee"
	"github.com/eventstaff/attendance/internal/transport"
	"github.com/eventstaff/attendance/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

// MockRepository implements user.RepositoryAPI for testing
type MockRepository struct {
	users      map[int64]*userDatamodel.User
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[int64]*userDatamodel.User)}
}

func (m *MockRepository) List(ctx context.Context) ([]*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*userDatamodel.User
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MockRepository) GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	if m.shouldFail {
		return m.failError
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MockRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	if m.shouldFail {
		return m.failError
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	delete(m.users, id)
	return nil
}

func (m *MockRepository) CountActiveByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.Role == role && u.IsActive {
			n++
		}
	}
	return n, nil
}

type mockEmployees map[int64]bool

func (m mockEmployees) Lookup(ctx context.Context, id int64) (*employee.Employee, error) {
	if !m[id] {
		return nil, internal.ErrEmployeeNotFound
	}
	return &employee.Employee{ID: id}, nil
}

type stubIssuer struct{}

func (stubIssuer) IssueTokens(u *coreuser.User) (auth.AuthTokens, error) {
	return auth.AuthTokens{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}, nil
}

func ptr[T any](v T) *T { return &v }

var _ = Describe("User Service", func() {
	var (
		ctx     context.Context
		repo    *MockRepository
		service *user.Service
		admin   *internal.Principal
	)

	register := func(actor *internal.Principal, username, role string) *coreuser.User {
		u, err := service.Register(ctx, actor, user.RegisterDTO{
			Username: username,
			Email:    username + "@example.com",
			Password: "password123",
			Role:     role,
		})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = user.NewService(repo, mockEmployees{7: true}, auth.NewABACPolicy(), bcrypt.MinCost, logger)
		admin = &internal.Principal{UserID: 100, Role: coreuser.RoleAdmin}
	})

	Describe("Register", func() {
		It("should create a plain user with a bcrypt hash", func() {
			u := register(nil, "ana", "")

			Expect(u.Role).To(Equal(coreuser.RoleUser))
			Expect(u.IsActive).To(BeTrue())
			Expect(coreuser.VerifyPassword(u.PasswordHash, "password123")).To(Succeed())
		})

		It("should normalise the email", func() {
			u, err := service.Register(ctx, nil, user.RegisterDTO{Username: "ana", Email: " Ana@Example.COM ", Password: "password123"})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Email).To(Equal("ana@example.com"))
		})

		It("should not let anonymous callers pick a role", func() {
			_, err := service.Register(ctx, nil, user.RegisterDTO{Username: "eve", Email: "eve@example.com", Password: "password123", Role: "admin"})
			Expect(err).To(MatchError(internal.ErrAccessDenied))
			Expect(repo.users).To(BeEmpty())
		})

		It("should let admins create managers linked to an employee", func() {
			u, err := service.Register(ctx, admin, user.RegisterDTO{
				Username: "boss", Email: "boss@example.com", Password: "password123", Role: "manager", EmployeeID: ptr(int64(7)),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(coreuser.RoleManager))
			Expect(*u.EmployeeID).To(Equal(int64(7)))
		})

		It("should reject an unknown employee link", func() {
			_, err := service.Register(ctx, admin, user.RegisterDTO{
				Username: "boss", Email: "boss@example.com", Password: "password123", EmployeeID: ptr(int64(8)),
			})
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})

		It("should reject taken usernames and emails", func() {
			register(nil, "ana", "")

			_, err := service.Register(ctx, nil, user.RegisterDTO{Username: "ana", Email: "x@example.com", Password: "password123"})
			Expect(err).To(MatchError(internal.ErrUsernameTaken))

			_, err = service.Register(ctx, nil, user.RegisterDTO{Username: "ana2", Email: "ANA@example.com", Password: "password123"})
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("should validate the payload", func() {
			_, err := service.Register(ctx, nil, user.RegisterDTO{Username: "ab", Email: "not-an-email", Password: "short"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("Get", func() {
		It("should allow self and admin but not others", func() {
			u := register(nil, "ana", "")
			self := u.Principal()
			other := &internal.Principal{UserID: u.ID + 1, Role: coreuser.RoleManager}

			_, err := service.Get(ctx, self, u.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Get(ctx, admin, u.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Get(ctx, other, u.ID)
			Expect(err).To(MatchError(internal.ErrAccessDenied))
		})

		It("should return not found for admins asking for missing users", func() {
			_, err := service.Get(ctx, admin, 42)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Update", func() {
		It("should let users edit their own profile", func() {
			u := register(nil, "ana", "")

			updated, err := service.Update(ctx, u.Principal(), u.ID, user.UpdateUserDTO{FirstName: ptr("Ana"), Password: ptr("newpassword")})
			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.FirstName).To(Equal("Ana"))
			Expect(coreuser.VerifyPassword(updated.PasswordHash, "newpassword")).To(Succeed())
		})

		It("should keep role changes for admins", func() {
			u := register(nil, "ana", "")

			_, err := service.Update(ctx, u.Principal(), u.ID, user.UpdateUserDTO{Role: ptr("admin")})
			Expect(err).To(MatchError(internal.ErrAccessDenied))

			updated, err := service.Update(ctx, admin, u.ID, user.UpdateUserDTO{Role: ptr("manager")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal(coreuser.RoleManager))
		})

		It("should refuse to demote the last active admin", func() {
			root := register(admin, "root", "admin")

			_, err := service.Update(ctx, root.Principal(), root.ID, user.UpdateUserDTO{IsActive: ptr(false)})
			Expect(err).To(MatchError(internal.ErrLastAdmin))

			register(admin, "second", "admin")
			updated, err := service.Update(ctx, root.Principal(), root.ID, user.UpdateUserDTO{IsActive: ptr(false)})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
		})

		It("should reject an email owned by someone else", func() {
			register(nil, "ana", "")
			bob := register(nil, "bob", "")

			_, err := service.Update(ctx, bob.Principal(), bob.ID, user.UpdateUserDTO{Email: ptr("ana@example.com")})
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("should normalise a padded email before checking it", func() {
			register(nil, "ana", "")
			bob := register(nil, "bob", "")

			_, err := service.Update(ctx, bob.Principal(), bob.ID, user.UpdateUserDTO{Email: ptr(" ANA@example.com ")})
			Expect(err).To(MatchError(internal.ErrEmailTaken))

			updated, err := service.Update(ctx, bob.Principal(), bob.ID, user.UpdateUserDTO{Email: ptr("  Bob.New@Example.COM")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Email).To(Equal("bob.new@example.com"))
		})
	})

	Describe("Delete", func() {
		It("should be admin only", func() {
			u := register(nil, "ana", "")

			Expect(service.Delete(ctx, u.Principal(), u.ID)).To(MatchError(internal.ErrAccessDenied))
			Expect(service.Delete(ctx, admin, u.ID)).To(Succeed())
			Expect(repo.users).NotTo(HaveKey(u.ID))
		})

		It("should keep the last admin", func() {
			root := register(admin, "root", "admin")
			Expect(service.Delete(ctx, admin, root.ID)).To(MatchError(internal.ErrLastAdmin))
		})
	})

	Describe("EnsureAdmin", func() {
		cfg := internal.AdminConfig{Username: "admin", Email: "admin@example.com", Password: "changeme123"}

		It("should create the admin once", func() {
			created, err := service.EnsureAdmin(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			created, err = service.EnsureAdmin(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(repo.users).To(HaveLen(1))
		})

		It("should require a password", func() {
			_, err := service.EnsureAdmin(ctx, internal.AdminConfig{Username: "admin", Email: "admin@example.com"})
			Expect(err).To(HaveOccurred())
		})
	})

	It("should surface repository failures", func() {
		repo.shouldFail = true
		repo.failError = errors.New("db down")

		_, err := service.List(ctx)
		Expect(err).To(MatchError("db down"))
	})
})

var _ = Describe("User Handler", func() {
	var (
		repo   *MockRepository
		router chi.Router
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service := user.NewService(repo, nil, nil, bcrypt.MinCost, logger)
		h := user.NewHandler(transport.NewBaseHandler(logger), service, stubIssuer{})

		router = chi.NewRouter()
		router.Post("/api/auth/register", h.Register)
		router.Delete("/api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			ctx := internal.ContextWithPrincipal(r.Context(), &internal.Principal{UserID: 99, Role: coreuser.RoleAdmin})
			h.Delete(w, r.WithContext(ctx))
		})
	})

	It("should register and return tokens", func() {
		body := `{"username":"ana","email":"ana@example.com","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		var resp struct {
			User   map[string]interface{} `json:"user"`
			Tokens auth.AuthTokens        `json:"tokens"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.User["username"]).To(Equal("ana"))
		Expect(resp.User).NotTo(HaveKey("passwordHash"))
		Expect(resp.Tokens.AccessToken).To(Equal("access"))
	})

	It("should map duplicate usernames to 409", func() {
		body := `{"username":"ana","email":"ana@example.com","password":"password123"}`
		for _, want := range []int{http.StatusCreated, http.StatusConflict} {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(want))
		}
	})

	It("should delete with 204 and report 404 afterwards", func() {
		Expect(repo.Create(context.Background(), &userDatamodel.User{Username: "ana", Email: "a@example.com", Role: "user", IsActive: true})).To(Succeed())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/1", nil))
		Expect(rec.Code).To(Equal(http.StatusNoContent))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/1", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
