package event

import "time"

type Event struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Location  *string   `gorm:"column:location"`
	StartDate time.Time `gorm:"column:start_date;not null"`
	EndDate   time.Time `gorm:"column:end_date;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Event) TableName() string {
	return "events"
}
