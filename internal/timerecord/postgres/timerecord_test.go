package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/eventstaff/attendance/internal/attendance"
	employeeDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/employee"
	eventDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/event"
	"github.com/eventstaff/attendance/internal/testutil"
	"github.com/eventstaff/attendance/internal/timerecord"
	timerecordPostgres "github.com/eventstaff/attendance/internal/timerecord/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestTimeRecordPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TimeRecord Postgres Suite")
}

var _ = Describe("TimeRecord Repository", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		repo    *timerecordPostgres.TimeRecordRepository
		eventID int64
		anaID   int64
		brunoID int64
		base    time.Time
	)

	add := func(employeeID int64, rt attendance.RecordType, ts time.Time) attendance.TimeRecord {
		r := attendance.TimeRecord{EmployeeID: employeeID, EventID: eventID, RecordType: rt, Timestamp: ts}
		Expect(repo.Create(ctx, &r)).To(Succeed())
		return r
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())
		repo = timerecordPostgres.NewTimeRecordRepository(db)
		base = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

		ev := &eventDatamodel.Event{Name: "Expo", StartDate: base, EndDate: base.Add(24 * time.Hour)}
		Expect(db.Create(ev).Error).To(Succeed())
		eventID = ev.ID

		ana := &employeeDatamodel.Employee{Name: "Ana", Email: "ana@example.com", Phone: "1", Document: "D1", Role: "usher", EventID: eventID}
		bruno := &employeeDatamodel.Employee{Name: "Bruno", Email: "bruno@example.com", Phone: "2", Document: "D2", Role: "guard", EventID: eventID}
		Expect(db.Create(ana).Error).To(Succeed())
		Expect(db.Create(bruno).Error).To(Succeed())
		anaID, brunoID = ana.ID, bruno.ID
	})

	It("should assign ids and keep microsecond precision", func() {
		ts := base.Add(123456 * time.Microsecond)
		r := add(anaID, attendance.CheckIn, ts)
		Expect(r.ID).NotTo(BeZero())

		records, err := repo.ListFor(ctx, anaID, eventID)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Timestamp.Equal(ts)).To(BeTrue())
		Expect(records[0].RecordType).To(Equal(attendance.CheckIn))
	})

	It("should order latest first with id as tie breaker", func() {
		first := add(anaID, attendance.CheckIn, base)
		second := add(anaID, attendance.CheckOut, base)
		add(anaID, attendance.CheckIn, base.Add(-time.Hour))

		records, err := repo.ListFor(ctx, anaID, eventID)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(3))
		Expect(records[0].ID).To(Equal(second.ID))
		Expect(records[1].ID).To(Equal(first.ID))
	})

	It("should filter by employee and time window", func() {
		add(anaID, attendance.CheckIn, base)
		add(brunoID, attendance.CheckIn, base.Add(time.Hour))
		add(anaID, attendance.CheckOut, base.Add(26*time.Hour))

		from, to := base.Add(-time.Hour), base.Add(23*time.Hour)
		records, err := repo.List(ctx, timerecord.ListFilter{EmployeeID: &anaID, From: &from, To: &to})
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].RecordType).To(Equal(attendance.CheckIn))

		all, err := repo.List(ctx, timerecord.ListFilter{EventID: &eventID})
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
	})

	It("should load records for a batch of employees", func() {
		add(anaID, attendance.CheckIn, base)
		add(brunoID, attendance.CheckIn, base)

		records, err := repo.ListByEmployees(ctx, []int64{anaID, brunoID})
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))

		none, err := repo.ListByEmployees(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(none).To(BeEmpty())
	})
})
