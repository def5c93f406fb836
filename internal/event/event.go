package event

import (
	"time"

	eventDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/event"
)

type Event struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  *string   `json:"location"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e *Event) apply(dto UpdateEventDTO) {
	if dto.Name != nil {
		e.Name = *dto.Name
	}
	if dto.Location != nil {
		e.Location = dto.Location
	}
	if dto.StartDate != nil {
		e.StartDate = *dto.StartDate
	}
	if dto.EndDate != nil {
		e.EndDate = *dto.EndDate
	}
}

func ToDataModel(e *Event) *eventDatamodel.Event {
	return &eventDatamodel.Event{
		ID:        e.ID,
		Name:      e.Name,
		Location:  e.Location,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		CreatedAt: e.CreatedAt,
	}
}

func FromDataModel(e *eventDatamodel.Event) *Event {
	return &Event{
		ID:        e.ID,
		Name:      e.Name,
		Location:  e.Location,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		CreatedAt: e.CreatedAt,
	}
}
