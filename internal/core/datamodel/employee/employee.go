package employee

import "time"

type Employee struct {
	ID               int64     `gorm:"primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	Email            string    `gorm:"column:email;uniqueIndex;not null"`
	Phone            string    `gorm:"column:phone;not null"`
	Document         string    `gorm:"column:document;not null"`
	Role             string    `gorm:"column:role;not null"`
	EventID          int64     `gorm:"column:event_id;not null;index"`
	DefaultStartTime *string   `gorm:"column:default_start_time"`
	DefaultEndTime   *string   `gorm:"column:default_end_time"`
	PhotoURL         *string   `gorm:"column:photo_url"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
