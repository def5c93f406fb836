package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/auth"
	userDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/user"
	coreuser "github.com/eventstaff/attendance/internal/core/user"
	"github.com/eventstaff/attendance/internal/employee"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	Delete(ctx context.Context, id int64) error
	CountActiveByRole(ctx context.Context, role string) (int64, error)
}

// EmployeeLookup checks that a linked employee exists.
type EmployeeLookup interface {
	Lookup(ctx context.Context, id int64) (*employee.Employee, error)
}

type Service struct {
	repo       RepositoryAPI
	employees  EmployeeLookup
	policy     *auth.ABACPolicy
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, employees EmployeeLookup, policy *auth.ABACPolicy, bcryptCost int, logger *slog.Logger) *Service {
	if policy == nil {
		policy = auth.NewABACPolicy()
	}
	return &Service{
		repo:       repo,
		employees:  employees,
		policy:     policy,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an account. actor is nil for self-registration, which may
// only produce plain users.
func (s *Service) Register(ctx context.Context, actor *internal.Principal, dto RegisterDTO) (*coreuser.User, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	dto.Email = normalizeEmail(dto.Email)
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.policy.CanAssignRole(actor, dto.Role); err != nil {
		return nil, err
	}
	if dto.EmployeeID != nil && !actor.HasRole(coreuser.RoleAdmin) {
		return nil, internal.ErrAccessDenied.WithMessage("only admins may link accounts to employees")
	}

	email := dto.Email
	if err := s.ensureUnique(ctx, dto.Username, email, 0); err != nil {
		return nil, err
	}
	if err := s.checkEmployee(ctx, dto.EmployeeID); err != nil {
		return nil, err
	}

	hash, err := coreuser.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	role := dto.Role
	if role == "" {
		role = coreuser.RoleUser
	}
	u := &coreuser.User{
		Username:     dto.Username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		EmployeeID:   dto.EmployeeID,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		IsActive:     true,
	}

	row := coreuser.ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", u.Username)
		return nil, err
	}

	s.logger.Info("user registered", "user_id", row.ID, "role", row.Role)
	return coreuser.FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context) ([]*coreuser.User, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	out := make([]*coreuser.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, coreuser.FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *internal.Principal, id int64) (*coreuser.User, error) {
	if err := s.policy.CanViewUser(actor, id); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) Update(ctx context.Context, actor *internal.Principal, id int64, dto UpdateUserDTO) (*coreuser.User, error) {
	if dto.Email != nil {
		email := normalizeEmail(*dto.Email)
		dto.Email = &email
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.policy.CanUpdateUser(actor, id, dto.privileged()); err != nil {
		return nil, err
	}

	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil {
		email := *dto.Email
		if email != u.Email {
			if err := s.ensureUnique(ctx, "", email, u.ID); err != nil {
				return nil, err
			}
			u.Email = email
		}
	}
	if dto.Password != nil {
		hash, err := coreuser.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
	}
	if dto.FirstName != nil {
		u.FirstName = dto.FirstName
	}
	if dto.LastName != nil {
		u.LastName = dto.LastName
	}
	if dto.EmployeeID != nil {
		if err := s.checkEmployee(ctx, dto.EmployeeID); err != nil {
			return nil, err
		}
		u.EmployeeID = dto.EmployeeID
	}

	demoting := (dto.Role != nil && *dto.Role != coreuser.RoleAdmin) || (dto.IsActive != nil && !*dto.IsActive)
	if demoting && u.Role == coreuser.RoleAdmin && u.IsActive {
		if err := s.ensureOtherAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if dto.Role != nil {
		u.Role = *dto.Role
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	row := coreuser.ToDataModel(u)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}
	return coreuser.FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, actor *internal.Principal, id int64) error {
	if err := s.policy.CanDeleteUser(actor, id); err != nil {
		return err
	}

	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == coreuser.RoleAdmin && u.IsActive {
		if err := s.ensureOtherAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// EnsureAdmin creates the initial admin when no active admin exists. It
// reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, cfg internal.AdminConfig) (bool, error) {
	count, err := s.repo.CountActiveByRole(ctx, coreuser.RoleAdmin)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if cfg.Password == "" {
		return false, errors.New("initial admin password is not configured")
	}

	seed := &internal.Principal{Role: coreuser.RoleAdmin}
	if _, err := s.Register(ctx, seed, RegisterDTO{
		Username: cfg.Username,
		Email:    cfg.Email,
		Password: cfg.Password,
		Role:     coreuser.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) load(ctx context.Context, id int64) (*coreuser.User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return coreuser.FromDataModel(row), nil
}

// ensureUnique skips the username check when username is empty. selfID is
// the account being edited, 0 on create.
func (s *Service) ensureUnique(ctx context.Context, username, email string, selfID int64) error {
	if username != "" {
		existing, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return internal.ErrUsernameTaken
		}
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return internal.ErrEmailTaken
	}
	return nil
}

func (s *Service) checkEmployee(ctx context.Context, employeeID *int64) error {
	if employeeID == nil || s.employees == nil {
		return nil
	}
	_, err := s.employees.Lookup(ctx, *employeeID)
	return err
}

func (s *Service) ensureOtherAdmin(ctx context.Context) error {
	count, err := s.repo.CountActiveByRole(ctx, coreuser.RoleAdmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return internal.ErrLastAdmin
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
