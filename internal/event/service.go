package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/eventstaff/attendance/internal"
	eventDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/event"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*eventDatamodel.Event, error)
	GetByID(ctx context.Context, id int64) (*eventDatamodel.Event, error)
	Create(ctx context.Context, event *eventDatamodel.Event) error
	Update(ctx context.Context, event *eventDatamodel.Event) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	CountEmployees(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Event, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list events", "error", err)
		return nil, err
	}

	events := make([]*Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, FromDataModel(row))
	}
	return events, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Event, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get event", "error", err, "event_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrEventNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateEventDTO) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &eventDatamodel.Event{
		Name:      dto.Name,
		Location:  dto.Location,
		StartDate: dto.StartDate,
		EndDate:   dto.EndDate,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create event", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("event created", "event_id", row.ID, "name", row.Name)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateEventDTO) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current.apply(dto)
	if err := validateRange(current.StartDate, current.EndDate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, ToDataModel(current)); err != nil {
		s.logger.Error("failed to update event", "error", err, "event_id", id)
		return nil, err
	}
	return current, nil
}

// Delete refuses to remove an event that still has employees.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.CountEmployees(ctx, id)
	if err != nil {
		s.logger.Error("failed to count event employees", "error", err, "event_id", id)
		return err
	}
	if n > 0 {
		return internal.ErrEventInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete event", "error", err, "event_id", id)
		return err
	}
	s.logger.Info("event deleted", "event_id", id)
	return nil
}

// EnsureDefault creates a starter event when the table is empty.
func (s *Service) EnsureDefault(ctx context.Context, now time.Time) (*Event, bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, false, err
	}
	if n > 0 {
		return nil, false, nil
	}

	location := "Main venue"
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	ev, err := s.Create(ctx, CreateEventDTO{
		Name:      "Default Event",
		Location:  &location,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 7),
	})
	if err != nil {
		return nil, false, err
	}
	return ev, true, nil
}
