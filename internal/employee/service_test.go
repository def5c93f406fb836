package employee_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/attendance"
	employeeDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/employee"
	"github.com/eventstaff/attendance/internal/core/events"
	"github.com/eventstaff/attendance/internal/employee"
	"github.com/eventstaff/attendance/internal/event"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEmployee(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Suite")
}

// MockRepository implements employee.RepositoryAPI for testing
type MockRepository struct {
	employees  map[int64]*employeeDatamodel.Employee
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{employees: make(map[int64]*employeeDatamodel.Employee)}
}

func (m *MockRepository) List(ctx context.Context, eventID *int64) ([]*employeeDatamodel.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*employeeDatamodel.Employee
	for id := int64(1); id <= m.nextID; id++ {
		e, ok := m.employees[id]
		if !ok || (eventID != nil && e.EventID != *eventID) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*employeeDatamodel.Employee, error) {
	for _, e := range m.employees {
		if strings.EqualFold(e.Email, email) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	if m.shouldFail {
		return m.failError
	}
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = time.Now()
	cp := *e
	m.employees[e.ID] = &cp
	return nil
}

func (m *MockRepository) Update(ctx context.Context, e *employeeDatamodel.Employee) error {
	if m.shouldFail {
		return m.failError
	}
	cp := *e
	m.employees[e.ID] = &cp
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	delete(m.employees, id)
	return nil
}

type mockRecords struct {
	records []attendance.TimeRecord
	calls   int
}

func (m *mockRecords) ListByEmployees(ctx context.Context, ids []int64) ([]attendance.TimeRecord, error) {
	m.calls++
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []attendance.TimeRecord
	for _, r := range m.records {
		if wanted[r.EmployeeID] {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockEvents map[int64]*event.Event

func (m mockEvents) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	e, ok := m[id]
	if !ok {
		return nil, internal.ErrEventNotFound
	}
	return e, nil
}

type capturePublisher struct {
	events []events.Event
}

func (p *capturePublisher) Publish(ctx context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

var _ = Describe("Employee Service", func() {
	var (
		ctx       context.Context
		repo      *MockRepository
		records   *mockRecords
		publisher *capturePublisher
		service   *employee.Service
		base      time.Time
	)

	validDTO := func(email string, eventID int64) employee.CreateEmployeeDTO {
		return employee.CreateEmployeeDTO{
			Name:     "Ana Souza",
			Email:    email,
			Phone:    "+55 11 99999-0000",
			Document: "123.456.789-00",
			Role:     "usher",
			EventID:  eventID,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		records = &mockRecords{}
		publisher = &capturePublisher{}
		base = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
		evs := mockEvents{1: {ID: 1, Name: "Expo"}, 2: {ID: 2, Name: "Fair"}}
		service = employee.NewService(repo, records, evs, publisher, time.UTC,
			slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("Create", func() {
		It("should create an employee and announce it", func() {
			e, err := service.Create(ctx, validDTO("ana@example.com", 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(e.ID).To(Equal(int64(1)))
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeEmployeeChanged))
		})

		It("should reject a duplicate email regardless of case", func() {
			_, err := service.Create(ctx, validDTO("ana@example.com", 1))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(ctx, validDTO("ANA@example.com", 1))
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("should reject an unknown event", func() {
			_, err := service.Create(ctx, validDTO("ana@example.com", 9))
			Expect(err).To(MatchError(internal.ErrEventNotFound))
		})

		It("should reject a malformed shift time", func() {
			dto := validDTO("ana@example.com", 1)
			bad := "25:99"
			dto.DefaultStartTime = &bad
			_, err := service.Create(ctx, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("should reject missing required fields", func() {
			_, err := service.Create(ctx, employee.CreateEmployeeDTO{EventID: 1})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("status derivation", func() {
		var ana, bruno *employee.Employee

		BeforeEach(func() {
			var err error
			ana, err = service.Create(ctx, validDTO("ana@example.com", 1))
			Expect(err).NotTo(HaveOccurred())
			bruno, err = service.Create(ctx, validDTO("bruno@example.com", 1))
			Expect(err).NotTo(HaveOccurred())

			records.records = []attendance.TimeRecord{
				{ID: 1, EmployeeID: ana.ID, EventID: 1, RecordType: attendance.CheckIn, Timestamp: base},
				{ID: 2, EmployeeID: ana.ID, EventID: 1, RecordType: attendance.BreakStart, Timestamp: base.Add(2 * time.Hour)},
				{ID: 3, EmployeeID: bruno.ID, EventID: 2, RecordType: attendance.CheckIn, Timestamp: base},
			}
		})

		It("should derive every status from one fetch", func() {
			list, err := service.List(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(records.calls).To(Equal(1))

			Expect(list[0].Status).To(Equal(attendance.StatusOnBreak))
			Expect(*list[0].CheckInTime).To(Equal("08:00"))
			Expect(list[0].LastActivity.ID).To(Equal(int64(2)))

			// Bruno's only record belongs to another event.
			Expect(list[1].Status).To(Equal(attendance.StatusAbsent))
			Expect(list[1].LastActivity).To(BeNil())
		})

		It("should return detail with records latest first", func() {
			detail, err := service.Get(ctx, ana.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Status).To(Equal(attendance.StatusOnBreak))
			Expect(detail.TimeRecords).To(HaveLen(2))
			Expect(detail.TimeRecords[0].RecordType).To(Equal(attendance.BreakStart))
		})

		It("should filter by event", func() {
			eventID := int64(2)
			list, err := service.List(ctx, &eventID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("should apply a partial update and keep other fields", func() {
			created, err := service.Create(ctx, validDTO("ana@example.com", 1))
			Expect(err).NotTo(HaveOccurred())

			role := "supervisor"
			updated, err := service.Update(ctx, created.ID, employee.UpdateEmployeeDTO{Role: &role})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal("supervisor"))
			Expect(updated.Email).To(Equal("ana@example.com"))
		})

		It("should announce a move to both events", func() {
			created, _ := service.Create(ctx, validDTO("ana@example.com", 1))
			publisher.events = nil

			eventID := int64(2)
			_, err := service.Update(ctx, created.ID, employee.UpdateEmployeeDTO{EventID: &eventID})
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.events).To(HaveLen(2))

			var touched []int64
			for _, e := range publisher.events {
				id, ok := events.EventIDOf(e)
				Expect(ok).To(BeTrue())
				touched = append(touched, id)
			}
			Expect(touched).To(ConsistOf(int64(1), int64(2)))
		})

		It("should reject taking another employee's email", func() {
			_, _ = service.Create(ctx, validDTO("ana@example.com", 1))
			bruno, _ := service.Create(ctx, validDTO("bruno@example.com", 1))

			email := "ana@example.com"
			_, err := service.Update(ctx, bruno.ID, employee.UpdateEmployeeDTO{Email: &email})
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("should return not found for a missing employee", func() {
			role := "x"
			_, err := service.Update(ctx, 404, employee.UpdateEmployeeDTO{Role: &role})
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})
	})

	Describe("Delete", func() {
		It("should delete an existing employee", func() {
			created, _ := service.Create(ctx, validDTO("ana@example.com", 1))
			Expect(service.Delete(ctx, created.ID)).To(Succeed())
			_, err := service.Lookup(ctx, created.ID)
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})
	})

	It("should surface repository failures", func() {
		repo.shouldFail = true
		repo.failError = errors.New("database down")
		_, err := service.List(ctx, nil)
		Expect(err).To(MatchError("database down"))
	})

	Describe("Badge", func() {
		It("should build the badge texts", func() {
			created, _ := service.Create(ctx, validDTO("ana@example.com", 1))
			badge, err := service.Badge(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(badge.QRPayload).To(Equal(`{"employeeId":1}`))
			Expect(badge.Barcode).To(Equal("EMP0001"))
		})
	})
})

var _ = DescribeTable("ParseBadgeCode",
	func(code string, want int64, ok bool) {
		id, parsed := employee.ParseBadgeCode(code)
		Expect(parsed).To(Equal(ok))
		Expect(id).To(Equal(want))
	},
	Entry("qr payload", `{"employeeId":42}`, int64(42), true),
	Entry("qr payload with spaces", `  {"employeeId": 7} `, int64(7), true),
	Entry("barcode", "EMP0005", int64(5), true),
	Entry("lower case barcode", "emp12345", int64(12345), true),
	Entry("empty", "", int64(0), false),
	Entry("zero id", `{"employeeId":0}`, int64(0), false),
	Entry("bad json", `{"employeeId":`, int64(0), false),
	Entry("prefix only", "EMP", int64(0), false),
	Entry("garbage", "hello", int64(0), false),
)
