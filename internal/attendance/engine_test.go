package attendance_test

import (
	"time"

	"github.com/eventstaff/attendance/internal/attendance"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var base = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func rec(id int64, rt attendance.RecordType, offset time.Duration) attendance.TimeRecord {
	return attendance.TimeRecord{
		ID:         id,
		EmployeeID: 1,
		EventID:    1,
		RecordType: rt,
		Timestamp:  base.Add(offset),
	}
}

var _ = Describe("Attendance Engine", func() {
	Describe("DeriveStatus", func() {
		It("should be absent with no records", func() {
			Expect(attendance.DeriveStatus(nil)).To(Equal(attendance.StatusAbsent))
		})

		DescribeTable("should map the latest record type",
			func(rt attendance.RecordType, expected attendance.Status) {
				records := []attendance.TimeRecord{rec(1, attendance.CheckIn, 0), rec(2, rt, time.Hour)}
				Expect(attendance.DeriveStatus(records)).To(Equal(expected))
			},
			Entry("check_in", attendance.CheckIn, attendance.StatusWorking),
			Entry("break_start", attendance.BreakStart, attendance.StatusOnBreak),
			Entry("break_end", attendance.BreakEnd, attendance.StatusWorking),
			Entry("check_out", attendance.CheckOut, attendance.StatusCheckedOut),
			Entry("unknown historical type", attendance.RecordType("lunch"), attendance.StatusAbsent),
		)

		It("should use chronology rather than slice order", func() {
			records := []attendance.TimeRecord{
				rec(3, attendance.CheckOut, 3*time.Hour),
				rec(1, attendance.CheckIn, 0),
				rec(2, attendance.BreakStart, time.Hour),
			}
			Expect(attendance.DeriveStatus(records)).To(Equal(attendance.StatusCheckedOut))
		})

		It("should break timestamp ties by the higher id", func() {
			records := []attendance.TimeRecord{
				rec(7, attendance.BreakStart, time.Hour),
				rec(6, attendance.CheckOut, time.Hour),
			}
			Expect(attendance.DeriveStatus(records)).To(Equal(attendance.StatusOnBreak))
		})

		It("should not reorder the caller's slice", func() {
			records := []attendance.TimeRecord{
				rec(1, attendance.CheckIn, 0),
				rec(2, attendance.CheckOut, time.Hour),
			}
			attendance.DeriveStatus(records)
			_ = attendance.SortLatestFirst(records)
			Expect(records[0].ID).To(Equal(int64(1)))
			Expect(records[1].ID).To(Equal(int64(2)))
		})
	})

	Describe("Summarize", func() {
		It("should return absent with no check-in time for an empty history", func() {
			summary := attendance.Summarize(nil, time.UTC)
			Expect(summary.Status).To(Equal(attendance.StatusAbsent))
			Expect(summary.CheckInTime).To(BeNil())
			Expect(summary.LastActivity).To(BeNil())
		})

		It("should report the most recent check-in", func() {
			records := []attendance.TimeRecord{
				rec(1, attendance.CheckIn, 0),
				rec(2, attendance.CheckOut, 4*time.Hour),
				rec(3, attendance.CheckIn, 5*time.Hour+30*time.Minute),
			}
			summary := attendance.Summarize(records, time.UTC)
			Expect(summary.Status).To(Equal(attendance.StatusWorking))
			Expect(*summary.CheckInTime).To(Equal("13:30"))
			Expect(summary.LastActivity.ID).To(Equal(int64(3)))
		})

		It("should format the check-in time in the given location", func() {
			loc := time.FixedZone("BRT", -3*60*60)
			summary := attendance.Summarize([]attendance.TimeRecord{rec(1, attendance.CheckIn, 0)}, loc)
			Expect(*summary.CheckInTime).To(Equal("05:00"))
		})

		It("should be idempotent", func() {
			records := []attendance.TimeRecord{
				rec(1, attendance.CheckIn, 0),
				rec(2, attendance.BreakStart, time.Hour),
			}
			Expect(attendance.Summarize(records, time.UTC)).To(Equal(attendance.Summarize(records, time.UTC)))
		})

		It("should have no check-in time when only breaks were recorded", func() {
			summary := attendance.Summarize([]attendance.TimeRecord{rec(1, attendance.BreakStart, 0)}, time.UTC)
			Expect(summary.Status).To(Equal(attendance.StatusOnBreak))
			Expect(summary.CheckInTime).To(BeNil())
		})
	})

	Describe("Transitions", func() {
		DescribeTable("CanTransition",
			func(status attendance.Status, rt attendance.RecordType, allowed bool) {
				Expect(attendance.CanTransition(status, rt)).To(Equal(allowed))
			},
			Entry("absent to check_in", attendance.StatusAbsent, attendance.CheckIn, true),
			Entry("absent to check_out", attendance.StatusAbsent, attendance.CheckOut, false),
			Entry("absent to break_start", attendance.StatusAbsent, attendance.BreakStart, false),
			Entry("working to break_start", attendance.StatusWorking, attendance.BreakStart, true),
			Entry("working to check_out", attendance.StatusWorking, attendance.CheckOut, true),
			Entry("working to check_in", attendance.StatusWorking, attendance.CheckIn, false),
			Entry("on_break to break_end", attendance.StatusOnBreak, attendance.BreakEnd, true),
			Entry("on_break to check_out", attendance.StatusOnBreak, attendance.CheckOut, false),
			Entry("checked_out to check_in", attendance.StatusCheckedOut, attendance.CheckIn, true),
			Entry("checked_out to break_end", attendance.StatusCheckedOut, attendance.BreakEnd, false),
		)

		It("should return a copy from AllowedNext", func() {
			allowed := attendance.AllowedNext(attendance.StatusWorking)
			allowed[0] = attendance.CheckIn
			Expect(attendance.AllowedNext(attendance.StatusWorking)).To(Equal([]attendance.RecordType{attendance.BreakStart, attendance.CheckOut}))
		})
	})

	Describe("ParseRecordType", func() {
		It("should accept canonical values only", func() {
			for _, rt := range attendance.RecordTypes {
				parsed, ok := attendance.ParseRecordType(string(rt))
				Expect(ok).To(BeTrue())
				Expect(parsed).To(Equal(rt))
			}
			for _, bad := range []string{"", "CHECK_IN", "checkin", "lunch"} {
				_, ok := attendance.ParseRecordType(bad)
				Expect(ok).To(BeFalse(), bad)
			}
		})
	})

	Describe("WorkedDuration", func() {
		It("should sum closed intervals without subtracting breaks", func() {
			records := []attendance.TimeRecord{
				rec(1, attendance.CheckIn, 0),
				rec(2, attendance.BreakStart, 2*time.Hour),
				rec(3, attendance.BreakEnd, 2*time.Hour+30*time.Minute),
				rec(4, attendance.CheckOut, 4*time.Hour),
			}
			Expect(attendance.WorkedDuration(records, base.Add(10*time.Hour))).To(Equal(4 * time.Hour))
		})

		It("should count an open interval until now", func() {
			records := []attendance.TimeRecord{rec(1, attendance.CheckIn, 0)}
			Expect(attendance.WorkedDuration(records, base.Add(90*time.Minute))).To(Equal(90 * time.Minute))
		})

		It("should not count an open interval while on break", func() {
			records := []attendance.TimeRecord{
				rec(1, attendance.CheckIn, 0),
				rec(2, attendance.CheckOut, time.Hour),
				rec(3, attendance.CheckIn, 2*time.Hour),
				rec(4, attendance.BreakStart, 3*time.Hour),
			}
			Expect(attendance.WorkedDuration(records, base.Add(5*time.Hour))).To(Equal(time.Hour))
		})

		It("should ignore a check-out without a check-in", func() {
			records := []attendance.TimeRecord{rec(1, attendance.CheckOut, time.Hour)}
			Expect(attendance.WorkedDuration(records, base.Add(2*time.Hour))).To(BeZero())
		})
	})

	Describe("FormatDuration", func() {
		DescribeTable("should render hours and minutes",
			func(d time.Duration, expected string) {
				Expect(attendance.FormatDuration(d)).To(Equal(expected))
			},
			Entry("zero", time.Duration(0), "0h 0m"),
			Entry("minutes only", 45*time.Minute, "0h 45m"),
			Entry("rounds up to the next hour", 59*time.Minute+40*time.Second, "1h 0m"),
			Entry("hours and minutes", 8*time.Hour+5*time.Minute, "8h 5m"),
			Entry("negative clamps to zero", -time.Minute, "0h 0m"),
		)
	})
})
