package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/attendance"
	"github.com/eventstaff/attendance/internal/core/events"
	"github.com/eventstaff/attendance/internal/dashboard"
	"github.com/eventstaff/attendance/internal/employee"
	"github.com/eventstaff/attendance/internal/timerecord"
	"github.com/eventstaff/attendance/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockEmployees struct {
	statuses []employee.WithStatus
	calls    int32
	gate     chan struct{}
	fail     error
}

func (m *mockEmployees) List(ctx context.Context, eventID *int64) ([]employee.WithStatus, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.gate != nil {
		<-m.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.fail != nil {
		return nil, m.fail
	}
	return m.statuses, nil
}

func (m *mockEmployees) ListEmployees(ctx context.Context, eventID *int64) ([]*employee.Employee, error) {
	out := make([]*employee.Employee, 0, len(m.statuses))
	for i := range m.statuses {
		e := m.statuses[i].Employee
		out = append(out, &e)
	}
	return out, nil
}

type mockActivity struct {
	rows []dashboard.ActivityRow
}

func (m *mockActivity) Recent(ctx context.Context, eventID *int64, limit int) ([]dashboard.ActivityRow, error) {
	if len(m.rows) > limit {
		return m.rows[:limit], nil
	}
	return m.rows, nil
}

type mockHistories struct {
	records []attendance.TimeRecord
}

func (m *mockHistories) ListByEmployees(ctx context.Context, ids []int64) ([]attendance.TimeRecord, error) {
	return m.records, nil
}

type mockRecords struct {
	records []attendance.TimeRecord
	filter  timerecord.ListFilter
}

func (m *mockRecords) List(ctx context.Context, filter timerecord.ListFilter) ([]attendance.TimeRecord, error) {
	m.filter = filter
	return m.records, nil
}

func (m *mockRecords) DayBounds(date string) (time.Time, time.Time, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, time.Time{}, internal.NewValidationFieldError("date", "bad date", internal.ErrCodeInvalidDate)
	}
	return day, day.AddDate(0, 0, 1), nil
}

func strPtr(s string) *string { return &s }

var _ = Describe("Dashboard Service", func() {
	var (
		ctx       context.Context
		employees *mockEmployees
		activity  *mockActivity
		histories *mockHistories
		records   *mockRecords
		now       time.Time
		service   *dashboard.Service
		logger    *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
		employees = &mockEmployees{statuses: withStatuses(attendance.StatusWorking, attendance.StatusAbsent)}
		activity = &mockActivity{}
		histories = &mockHistories{}
		records = &mockRecords{}
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		service = dashboard.NewService(employees, activity, histories, records, dashboard.Options{
			StatsTTL: time.Minute,
			Now:      func() time.Time { return now },
		}, logger)
	})

	Describe("Stats", func() {
		It("should serve repeated requests from the cache until expiry", func() {
			first, err := service.Stats(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.TotalEmployees).To(Equal(2))

			_, _ = service.Stats(ctx, nil)
			Expect(atomic.LoadInt32(&employees.calls)).To(Equal(int32(1)))

			now = now.Add(2 * time.Minute)
			_, _ = service.Stats(ctx, nil)
			Expect(atomic.LoadInt32(&employees.calls)).To(Equal(int32(2)))
		})

		It("should cache per event", func() {
			one, two := int64(1), int64(2)
			_, _ = service.Stats(ctx, &one)
			_, _ = service.Stats(ctx, &two)
			_, _ = service.Stats(ctx, &one)
			Expect(atomic.LoadInt32(&employees.calls)).To(Equal(int32(2)))
		})

		It("should collapse concurrent requests into one computation", func() {
			employees.gate = make(chan struct{})
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					stats, err := service.Stats(ctx, nil)
					Expect(err).NotTo(HaveOccurred())
					Expect(stats.TotalEmployees).To(Equal(2))
				}()
			}
			Eventually(func() int32 { return atomic.LoadInt32(&employees.calls) }).Should(Equal(int32(1)))
			close(employees.gate)
			wg.Wait()
			Expect(atomic.LoadInt32(&employees.calls)).To(Equal(int32(1)))
		})

		It("should finish a shared computation when the first caller goes away", func() {
			employees.gate = make(chan struct{})
			firstCtx, cancel := context.WithCancel(ctx)

			results := make(chan error, 2)
			go func() {
				_, err := service.Stats(firstCtx, nil)
				results <- err
			}()
			Eventually(func() int32 { return atomic.LoadInt32(&employees.calls) }).Should(Equal(int32(1)))
			go func() {
				_, err := service.Stats(ctx, nil)
				results <- err
			}()

			cancel()
			close(employees.gate)
			Eventually(results).Should(Receive(BeNil()))
			Eventually(results).Should(Receive(BeNil()))
		})

		It("should recompute after an attendance write on the bus", func() {
			bus := events.NewEventBus(logger)
			service.Subscribe(bus)

			eventID := int64(1)
			_, _ = service.Stats(ctx, &eventID)
			_, _ = service.Stats(ctx, nil)

			ev := events.NewTimeRecordCreatedEvent(1, 1, eventID, "check_in", "working", timerecord.SourceScan, now)
			Expect(bus.PublishSync(ctx, ev)).To(Succeed())

			_, _ = service.Stats(ctx, &eventID)
			_, _ = service.Stats(ctx, nil)
			Expect(atomic.LoadInt32(&employees.calls)).To(Equal(int32(4)))
		})

		It("should not cache when the ttl is zero", func() {
			service = dashboard.NewService(employees, activity, histories, records, dashboard.Options{}, logger)
			_, _ = service.Stats(ctx, nil)
			_, _ = service.Stats(ctx, nil)
			Expect(atomic.LoadInt32(&employees.calls)).To(Equal(int32(2)))
		})

		It("should not cache failures", func() {
			employees.fail = errors.New("database down")
			_, err := service.Stats(ctx, nil)
			Expect(err).To(MatchError("database down"))

			employees.fail = nil
			stats, err := service.Stats(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalEmployees).To(Equal(2))
		})
	})

	Describe("RecentActivity", func() {
		It("should attach the employee's current status for the record's event", func() {
			ts := now.Add(-time.Hour)
			activity.rows = []dashboard.ActivityRow{
				{
					Record:       attendance.TimeRecord{ID: 2, EmployeeID: 1, EventID: 1, RecordType: attendance.BreakStart, Timestamp: ts},
					EmployeeName: strPtr("Ana"),
					EmployeeRole: strPtr("usher"),
				},
				{Record: attendance.TimeRecord{ID: 1, EmployeeID: 5, EventID: 1, RecordType: attendance.CheckIn, Timestamp: ts}},
			}
			histories.records = []attendance.TimeRecord{
				{ID: 2, EmployeeID: 1, EventID: 1, RecordType: attendance.BreakStart, Timestamp: ts},
				{ID: 3, EmployeeID: 1, EventID: 1, RecordType: attendance.BreakEnd, Timestamp: ts.Add(30 * time.Minute)},
				{ID: 4, EmployeeID: 1, EventID: 2, RecordType: attendance.CheckOut, Timestamp: ts.Add(40 * time.Minute)},
			}

			items, err := service.RecentActivity(ctx, nil, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Employee.Name).To(Equal("Ana"))
			Expect(items[0].Employee.Status).To(Equal(attendance.StatusWorking))
		})
	})

	Describe("Shifts", func() {
		It("should narrow records to the requested day", func() {
			_, err := service.Shifts(ctx, nil, "2025-06-09")
			Expect(err).NotTo(HaveOccurred())
			Expect(records.filter.From).NotTo(BeNil())
			Expect(records.filter.To.Sub(*records.filter.From)).To(Equal(24 * time.Hour))
		})

		It("should stop open shifts at the end of a past day", func() {
			day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
			records.records = []attendance.TimeRecord{
				{ID: 1, EmployeeID: 1, EventID: 0, RecordType: attendance.CheckIn, Timestamp: day.Add(20 * time.Hour)},
			}
			report, err := service.Shifts(ctx, nil, "2025-06-09")
			Expect(err).NotTo(HaveOccurred())
			Expect(report[0].WorkedHours).To(Equal("4h 0m"))
		})

		It("should reject a malformed date", func() {
			_, err := service.Shifts(ctx, nil, "June 9")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Handler", func() {
		var handler *dashboard.Handler

		BeforeEach(func() {
			handler = dashboard.NewHandler(transport.NewBaseHandler(logger), service)
		})

		It("should render stats as JSON", func() {
			rec := httptest.NewRecorder()
			handler.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats?eventId=1", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body map[string]int
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["totalEmployees"]).To(Equal(2))
			Expect(body["attendanceRate"]).To(Equal(50))
		})

		It("should reject a bad event id", func() {
			rec := httptest.NewRecorder()
			handler.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats?eventId=abc", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject an out of range limit", func() {
			rec := httptest.NewRecorder()
			handler.RecentActivity(rec, httptest.NewRequest(http.MethodGet, "/api/recent-activity?limit=0", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return an empty feed as an empty array", func() {
			rec := httptest.NewRecorder()
			handler.RecentActivity(rec, httptest.NewRequest(http.MethodGet, "/api/recent-activity", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(HavePrefix("[]"))
		})
	})
})
