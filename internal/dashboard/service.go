package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eventstaff/attendance/internal/attendance"
	"github.com/eventstaff/attendance/internal/core/events"
	"github.com/eventstaff/attendance/internal/employee"
	"github.com/eventstaff/attendance/internal/timerecord"
	"golang.org/x/sync/singleflight"
)

type EmployeeLister interface {
	List(ctx context.Context, eventID *int64) ([]employee.WithStatus, error)
	ListEmployees(ctx context.Context, eventID *int64) ([]*employee.Employee, error)
}

// ActivityRow is a time record joined with its employee. Name and role are
// nil when the employee row is gone.
type ActivityRow struct {
	Record       attendance.TimeRecord
	EmployeeName *string
	EmployeeRole *string
}

type ActivityReader interface {
	Recent(ctx context.Context, eventID *int64, limit int) ([]ActivityRow, error)
}

type HistoryReader interface {
	ListByEmployees(ctx context.Context, employeeIDs []int64) ([]attendance.TimeRecord, error)
}

type RecordLister interface {
	List(ctx context.Context, filter timerecord.ListFilter) ([]attendance.TimeRecord, error)
	DayBounds(date string) (time.Time, time.Time, error)
}

// Subscriber is the part of the event bus the cache listens on.
type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

type Options struct {
	// StatsTTL is how long a stats snapshot is served from memory. Zero
	// disables caching; concurrent requests are still collapsed.
	StatsTTL      time.Duration
	ActivityLimit int
	Now           func() time.Time
}

type statsEntry struct {
	stats   Stats
	expires time.Time
}

type Service struct {
	employees EmployeeLister
	activity  ActivityReader
	histories HistoryReader
	records   RecordLister
	opts      Options
	logger    *slog.Logger

	mu         sync.Mutex
	cache      map[string]statsEntry
	generation uint64
	group      singleflight.Group
}

func NewService(employees EmployeeLister, activity ActivityReader, histories HistoryReader, records RecordLister, opts Options, logger *slog.Logger) *Service {
	if opts.ActivityLimit <= 0 {
		opts.ActivityLimit = DefaultActivityLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		employees: employees,
		activity:  activity,
		histories: histories,
		records:   records,
		opts:      opts,
		logger:    logger,
		cache:     make(map[string]statsEntry),
	}
}

func statsKey(eventID *int64) string {
	if eventID == nil {
		return "all"
	}
	return fmt.Sprintf("event:%d", *eventID)
}

// Stats returns the status counts for one event, or for everyone when
// eventID is nil.
func (s *Service) Stats(ctx context.Context, eventID *int64) (Stats, error) {
	key := statsKey(eventID)
	if stats, ok := s.cached(key); ok {
		statsCacheLookups.WithLabelValues("hit").Inc()
		return stats, nil
	}
	statsCacheLookups.WithLabelValues("miss").Inc()

	// the shared load must outlive any single caller's cancellation
	shared := context.WithoutCancel(ctx)
	resultI, err, _ := s.group.Do(key, func() (any, error) {
		// Another caller may have filled the cache while we waited.
		if stats, ok := s.cached(key); ok {
			return stats, nil
		}

		generation := s.currentGeneration()
		employees, err := s.employees.List(shared, eventID)
		if err != nil {
			return nil, err
		}
		stats := ComputeStats(employees)
		s.store(key, stats, generation)
		return stats, nil
	})
	if err != nil {
		s.logger.Error("failed to compute stats", "error", err, "key", key)
		return Stats{}, err
	}

	stats, ok := resultI.(Stats)
	if !ok {
		return Stats{}, fmt.Errorf("unexpected stats result type %T", resultI)
	}
	return stats, nil
}

func (s *Service) cached(key string) (Stats, bool) {
	if s.opts.StatsTTL <= 0 {
		return Stats{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok || !s.opts.Now().Before(entry.expires) {
		return Stats{}, false
	}
	return entry.stats, true
}

func (s *Service) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// store drops the snapshot if an invalidation happened while it was computed.
func (s *Service) store(key string, stats Stats, generation uint64) {
	if s.opts.StatsTTL <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return
	}
	s.cache[key] = statsEntry{stats: stats, expires: s.opts.Now().Add(s.opts.StatsTTL)}
}

// Invalidate forgets the snapshot of one event and the all-events snapshot.
func (s *Service) Invalidate(eventID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	delete(s.cache, statsKey(&eventID))
	delete(s.cache, statsKey(nil))
}

// Subscribe keeps the stats cache in step with attendance writes.
func (s *Service) Subscribe(bus Subscriber) {
	handler := func(ctx context.Context, e events.Event) error {
		eventID, ok := events.EventIDOf(e)
		if !ok {
			s.logger.Warn("bus event without event id", "event_type", e.EventType(), "id", e.EventID())
			return nil
		}
		s.Invalidate(eventID)
		return nil
	}
	bus.Subscribe(events.EventTypeTimeRecordCreated, handler)
	bus.Subscribe(events.EventTypeEmployeeChanged, handler)
}

type historyKey struct {
	employeeID int64
	eventID    int64
}

// RecentActivity returns the latest records with each employee's status as
// of now for the record's event.
func (s *Service) RecentActivity(ctx context.Context, eventID *int64, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = s.opts.ActivityLimit
	}

	rows, err := s.activity.Recent(ctx, eventID, limit)
	if err != nil {
		s.logger.Error("failed to load recent activity", "error", err)
		return nil, err
	}

	byRecord := make(map[int64]ActivityRow, len(rows))
	records := make([]attendance.TimeRecord, 0, len(rows))
	seen := make(map[int64]bool)
	var ids []int64
	for _, row := range rows {
		byRecord[row.Record.ID] = row
		records = append(records, row.Record)
		if row.EmployeeName != nil && !seen[row.Record.EmployeeID] {
			seen[row.Record.EmployeeID] = true
			ids = append(ids, row.Record.EmployeeID)
		}
	}

	histories := make(map[historyKey][]attendance.TimeRecord)
	if len(ids) > 0 {
		all, err := s.histories.ListByEmployees(ctx, ids)
		if err != nil {
			s.logger.Error("failed to load histories", "error", err, "employees", len(ids))
			return nil, err
		}
		for _, r := range all {
			k := historyKey{employeeID: r.EmployeeID, eventID: r.EventID}
			histories[k] = append(histories[k], r)
		}
	}

	lookup := func(r attendance.TimeRecord) (ActivityEmployee, bool) {
		row := byRecord[r.ID]
		if row.EmployeeName == nil {
			return ActivityEmployee{}, false
		}
		emp := ActivityEmployee{
			ID:     r.EmployeeID,
			Name:   *row.EmployeeName,
			Status: attendance.DeriveStatus(histories[historyKey{employeeID: r.EmployeeID, eventID: r.EventID}]),
		}
		if row.EmployeeRole != nil {
			emp.Role = *row.EmployeeRole
		}
		return emp, true
	}

	return RecentActivity(records, lookup, limit), nil
}

// Shifts reports worked time per employee, optionally for one YYYY-MM-DD day.
func (s *Service) Shifts(ctx context.Context, eventID *int64, date string) ([]ShiftEntry, error) {
	filter := timerecord.ListFilter{EventID: eventID}
	if date != "" {
		from, to, err := s.records.DayBounds(date)
		if err != nil {
			return nil, err
		}
		filter.From = &from
		filter.To = &to
	}

	employees, err := s.employees.ListEmployees(ctx, eventID)
	if err != nil {
		return nil, err
	}
	records, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.opts.Now()
	if filter.To != nil && filter.To.Before(now) {
		now = *filter.To
	}
	return ShiftReport(employees, records, now), nil
}
