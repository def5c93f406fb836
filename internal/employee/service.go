package employee

import (
	"context"
	"log/slog"
	"time"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/attendance"
	employeeDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/employee"
	"github.com/eventstaff/attendance/internal/core/events"
	"github.com/eventstaff/attendance/internal/event"
)

type RepositoryAPI interface {
	List(ctx context.Context, eventID *int64) ([]*employeeDatamodel.Employee, error)
	GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	GetByEmail(ctx context.Context, email string) (*employeeDatamodel.Employee, error)
	Create(ctx context.Context, employee *employeeDatamodel.Employee) error
	Update(ctx context.Context, employee *employeeDatamodel.Employee) error
	Delete(ctx context.Context, id int64) error
}

// RecordReader loads the time records that status derivation runs over.
type RecordReader interface {
	ListByEmployees(ctx context.Context, employeeIDs []int64) ([]attendance.TimeRecord, error)
}

type EventReader interface {
	GetByID(ctx context.Context, id int64) (*event.Event, error)
}

type Service struct {
	repo      RepositoryAPI
	records   RecordReader
	events    EventReader
	publisher events.Publisher
	loc       *time.Location
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, records RecordReader, eventReader EventReader, publisher events.Publisher, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		records:   records,
		events:    eventReader,
		publisher: publisher,
		loc:       loc,
		logger:    logger,
	}
}

// Lookup returns the bare employee, or ErrEmployeeNotFound.
func (s *Service) Lookup(ctx context.Context, id int64) (*Employee, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get employee", "error", err, "employee_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrEmployeeNotFound
	}
	return FromDataModel(row), nil
}

// ListEmployees returns employees without deriving their status.
func (s *Service) ListEmployees(ctx context.Context, eventID *int64) ([]*Employee, error) {
	rows, err := s.repo.List(ctx, eventID)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, err
	}
	out := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, eventID *int64) ([]WithStatus, error) {
	employees, err := s.ListEmployees(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.WithStatuses(ctx, employees)
}

// WithStatuses derives every employee's status from a single record fetch.
func (s *Service) WithStatuses(ctx context.Context, employees []*Employee) ([]WithStatus, error) {
	out := make([]WithStatus, 0, len(employees))
	if len(employees) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.ID)
	}

	records, err := s.records.ListByEmployees(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load time records", "error", err, "employees", len(ids))
		return nil, err
	}

	grouped := GroupRecords(employees, records)
	for _, e := range employees {
		out = append(out, NewWithStatus(*e, attendance.Summarize(grouped[e.ID], s.loc)))
	}
	return out, nil
}

func (s *Service) StatusOf(ctx context.Context, e *Employee) (WithStatus, error) {
	statuses, err := s.WithStatuses(ctx, []*Employee{e})
	if err != nil {
		return WithStatus{}, err
	}
	return statuses[0], nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	e, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := s.records.ListByEmployees(ctx, []int64{id})
	if err != nil {
		s.logger.Error("failed to load time records", "error", err, "employee_id", id)
		return nil, err
	}
	own := attendance.SortLatestFirst(GroupRecords([]*Employee{e}, records)[id])

	return &Detail{
		WithStatus:  NewWithStatus(*e, attendance.Summarize(own, s.loc)),
		TimeRecords: own,
	}, nil
}

func (s *Service) Badge(ctx context.Context, id int64) (*Badge, error) {
	e, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	b := NewBadge(e)
	return &b, nil
}

func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, dto.EventID); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, dto.Email, 0); err != nil {
		return nil, err
	}

	row := &employeeDatamodel.Employee{
		Name:             dto.Name,
		Email:            dto.Email,
		Phone:            dto.Phone,
		Document:         dto.Document,
		Role:             dto.Role,
		EventID:          dto.EventID,
		DefaultStartTime: dto.DefaultStartTime,
		DefaultEndTime:   dto.DefaultEndTime,
		PhotoURL:         dto.PhotoURL,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create employee", "error", err, "event_id", dto.EventID)
		return nil, err
	}

	s.logger.Info("employee created", "employee_id", row.ID, "event_id", row.EventID)
	s.publish(ctx, row.ID, row.EventID, "created")
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	previousEvent := current.EventID

	if dto.EventID != nil && *dto.EventID != current.EventID {
		if _, err := s.events.GetByID(ctx, *dto.EventID); err != nil {
			return nil, err
		}
	}
	if dto.Email != nil && *dto.Email != current.Email {
		if err := s.ensureEmailFree(ctx, *dto.Email, id); err != nil {
			return nil, err
		}
	}

	current.apply(dto)
	if err := s.repo.Update(ctx, ToDataModel(current)); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, err
	}

	s.publish(ctx, id, current.EventID, "updated")
	if previousEvent != current.EventID {
		s.publish(ctx, id, previousEvent, "moved")
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.Lookup(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return err
	}

	s.logger.Info("employee deleted", "employee_id", id)
	s.publish(ctx, id, current.EventID, "deleted")
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return internal.ErrEmailTaken
	}
	return nil
}

func (s *Service) publish(ctx context.Context, employeeID, eventID int64, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEmployeeChangedEvent(employeeID, eventID, action)); err != nil {
		s.logger.Warn("failed to publish employee change", "error", err, "employee_id", employeeID)
	}
}

// GroupRecords buckets records per employee, keeping only records of the
// employee's current event.
func GroupRecords(employees []*Employee, records []attendance.TimeRecord) map[int64][]attendance.TimeRecord {
	eventOf := make(map[int64]int64, len(employees))
	for _, e := range employees {
		eventOf[e.ID] = e.EventID
	}

	grouped := make(map[int64][]attendance.TimeRecord, len(employees))
	for _, r := range records {
		if eventID, ok := eventOf[r.EmployeeID]; ok && eventID == r.EventID {
			grouped[r.EmployeeID] = append(grouped[r.EmployeeID], r)
		}
	}
	return grouped
}
