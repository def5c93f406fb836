package postgres

import (
	"context"
	"errors"

	eventDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/event"
	"github.com/eventstaff/attendance/internal/event"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) event.RepositoryAPI {
	return &EventRepository{db: db}
}

func (r *EventRepository) List(ctx context.Context) ([]*eventDatamodel.Event, error) {
	var events []*eventDatamodel.Event
	err := r.db.WithContext(ctx).Order("start_date DESC, id DESC").Find(&events).Error
	return events, err
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*eventDatamodel.Event, error) {
	var ev eventDatamodel.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ev, nil
}

func (r *EventRepository) Create(ctx context.Context, ev *eventDatamodel.Event) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *EventRepository) Update(ctx context.Context, ev *eventDatamodel.Event) error {
	return r.db.WithContext(ctx).
		Model(&eventDatamodel.Event{}).
		Where("id = ?", ev.ID).
		Updates(map[string]interface{}{
			"name":       ev.Name,
			"location":   ev.Location,
			"start_date": ev.StartDate,
			"end_date":   ev.EndDate,
		}).Error
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&eventDatamodel.Event{}, id).Error
}

func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&eventDatamodel.Event{}).Count(&n).Error
	return n, err
}

func (r *EventRepository) CountEmployees(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("employees").Where("event_id = ?", id).Count(&n).Error
	return n, err
}
