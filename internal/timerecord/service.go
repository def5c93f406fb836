package timerecord

import (
	"context"
	"log/slog"
	"time"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/attendance"
	"github.com/eventstaff/attendance/internal/core/events"
	"github.com/eventstaff/attendance/internal/employee"
	"github.com/eventstaff/attendance/internal/event"
)

type RepositoryAPI interface {
	Create(ctx context.Context, record *attendance.TimeRecord) error
	ListFor(ctx context.Context, employeeID, eventID int64) ([]attendance.TimeRecord, error)
	List(ctx context.Context, filter ListFilter) ([]attendance.TimeRecord, error)
}

type EmployeeLookup interface {
	Lookup(ctx context.Context, id int64) (*employee.Employee, error)
}

type EventLookup interface {
	GetByID(ctx context.Context, id int64) (*event.Event, error)
}

type Options struct {
	// EnforceOnScan applies the transition table to QR scans as well.
	EnforceOnScan bool
	Location      *time.Location
	Now           func() time.Time
}

type Service struct {
	repo      RepositoryAPI
	employees EmployeeLookup
	events    EventLookup
	publisher events.Publisher
	locker    *KeyedLocker
	opts      Options
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, employees EmployeeLookup, eventLookup EventLookup, publisher events.Publisher, opts Options, logger *slog.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:      repo,
		employees: employees,
		events:    eventLookup,
		publisher: publisher,
		locker:    NewKeyedLocker(),
		opts:      opts,
		logger:    logger,
	}
}

// ingestRequest is the common shape of both ingestion paths.
type ingestRequest struct {
	source     string
	employeeID int64
	eventID    int64
	recordType attendance.RecordType
	notes      *string
	timestamp  *time.Time
	enforce    bool
}

type ingestOutcome struct {
	record   attendance.TimeRecord
	employee *employee.Employee
	history  []attendance.TimeRecord
}

// RecordAction appends a record from an explicit staff action. The transition
// table is always enforced on this path.
func (s *Service) RecordAction(ctx context.Context, dto CreateTimeRecordDTO) (*Result, error) {
	if err := dto.Validate(s.opts.Now()); err != nil {
		return nil, err
	}

	out, err := s.ingest(ctx, ingestRequest{
		source:     SourceManual,
		employeeID: dto.EmployeeID,
		eventID:    dto.EventID,
		recordType: attendance.RecordType(dto.RecordType),
		notes:      dto.Notes,
		timestamp:  dto.Timestamp,
		enforce:    true,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Record: out.record,
		Status: attendance.DeriveStatus(out.history),
	}, nil
}

// Scan appends a record read from a badge. Transitions are only checked when
// EnforceOnScan is set.
func (s *Service) Scan(ctx context.Context, dto ScanDTO) (*ScanResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	employeeID, ok := dto.ResolveEmployeeID()
	if !ok {
		return nil, internal.ErrInvalidScanCode
	}

	out, err := s.ingest(ctx, ingestRequest{
		source:     SourceScan,
		employeeID: employeeID,
		eventID:    dto.EventID,
		recordType: attendance.RecordType(dto.RecordType),
		notes:      dto.Notes,
		enforce:    s.opts.EnforceOnScan,
	})
	if err != nil {
		return nil, err
	}

	return &ScanResult{
		Record:   out.record,
		Employee: employee.NewWithStatus(*out.employee, attendance.Summarize(out.history, s.opts.Location)),
	}, nil
}

func (s *Service) ingest(ctx context.Context, req ingestRequest) (*ingestOutcome, error) {
	emp, err := s.employees.Lookup(ctx, req.employeeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, req.eventID); err != nil {
		return nil, err
	}
	if emp.EventID != req.eventID {
		return nil, internal.ErrEventMismatch.WithDetails(map[string]int64{
			"employeeEventId": emp.EventID,
			"eventId":         req.eventID,
		})
	}

	unlock := s.locker.Lock(req.employeeID, req.eventID)
	defer unlock()

	history, err := s.repo.ListFor(ctx, req.employeeID, req.eventID)
	if err != nil {
		s.logger.Error("failed to load history", "error", err, "employee_id", req.employeeID, "event_id", req.eventID)
		return nil, err
	}

	latest, hasLatest := attendance.Latest(history)
	current := attendance.DeriveStatus(history)

	if req.enforce && !attendance.CanTransition(current, req.recordType) {
		transitionsRejected.WithLabelValues(string(req.recordType), req.source).Inc()
		s.logger.Warn("transition rejected",
			"employee_id", req.employeeID,
			"event_id", req.eventID,
			"status", current,
			"record_type", req.recordType,
			"source", req.source)
		return nil, internal.ErrInvalidTransition.WithDetails(map[string]interface{}{
			"currentStatus": current,
			"recordType":    req.recordType,
			"allowed":       attendance.AllowedNext(current),
		})
	}

	ts := s.opts.Now()
	if req.timestamp != nil {
		ts = *req.timestamp
		if hasLatest && ts.Before(latest.Timestamp) {
			return nil, internal.NewValidationFieldError("timestamp", "timestamp must not precede the latest record", internal.ErrCodeInvalidDate)
		}
	}

	record := attendance.TimeRecord{
		EmployeeID: req.employeeID,
		EventID:    req.eventID,
		RecordType: req.recordType,
		Timestamp:  ts.UTC().Truncate(time.Microsecond),
		Notes:      req.notes,
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		s.logger.Error("failed to append time record", "error", err, "employee_id", req.employeeID, "event_id", req.eventID)
		return nil, err
	}

	history = append(history, record)
	status := attendance.DeriveStatus(history)

	recordsTotal.WithLabelValues(string(record.RecordType), req.source).Inc()
	s.logger.Info("time record appended",
		"record_id", record.ID,
		"employee_id", record.EmployeeID,
		"event_id", record.EventID,
		"record_type", record.RecordType,
		"status", status,
		"source", req.source)

	if s.publisher != nil {
		ev := events.NewTimeRecordCreatedEvent(record.ID, record.EmployeeID, record.EventID,
			string(record.RecordType), string(status), req.source, record.Timestamp)
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("failed to publish time record", "error", err, "record_id", record.ID)
		}
	}

	return &ingestOutcome{record: record, employee: emp, history: history}, nil
}

// List returns records latest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]attendance.TimeRecord, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list time records", "error", err)
		return nil, err
	}
	return records, nil
}

// DayBounds returns [start of day, start of next day) for a YYYY-MM-DD date
// in the service location.
func (s *Service) DayBounds(date string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.opts.Location)
	if err != nil {
		return time.Time{}, time.Time{}, internal.NewValidationFieldError("date", "date must use YYYY-MM-DD format", internal.ErrCodeInvalidDate)
	}
	return day, day.AddDate(0, 0, 1), nil
}
