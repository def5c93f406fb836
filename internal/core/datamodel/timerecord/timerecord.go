package timerecord

import "time"

// TimeRecord rows are append-only.
type TimeRecord struct {
	ID         int64     `gorm:"primaryKey"`
	EmployeeID int64     `gorm:"column:employee_id;not null;index:idx_time_records_employee_event,priority:1"`
	EventID    int64     `gorm:"column:event_id;not null;index:idx_time_records_employee_event,priority:2"`
	RecordType string    `gorm:"column:record_type;not null"`
	Timestamp  time.Time `gorm:"column:timestamp;not null;index:idx_time_records_employee_event,priority:3"`
	Notes      *string   `gorm:"column:notes"`
}

func (TimeRecord) TableName() string {
	return "time_records"
}
