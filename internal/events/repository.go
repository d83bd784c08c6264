package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketly/internal/sessions"
	"ticketly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, to Status) (bool, error)
	// AdvanceStatuses moves events along upcoming -> ongoing -> completed for the given day.
	AdvanceStatuses(ctx context.Context, today time.Time) (started, completed int64, err error)
}

// Transactor runs fn inside one database transaction, with repositories bound to it
type Transactor interface {
	WithTx(ctx context.Context, fn func(events Repository, sessions sessions.Repository) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("event %s not found", id)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, to Status) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Event{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update event status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) AdvanceStatuses(ctx context.Context, today time.Time) (int64, int64, error) {
	var started, completed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Event{}).
			Where("status IN ? AND COALESCE(end_date, start_date) < ?", []Status{StatusUpcoming, StatusOngoing}, today).
			Update("status", StatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		completed = res.RowsAffected

		res = tx.Model(&Event{}).
			Where("status = ? AND start_date <= ?", StatusUpcoming, today).
			Update("status", StatusOngoing)
		if res.Error != nil {
			return res.Error
		}
		started = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to advance event statuses: %w", err)
	}
	return started, completed, nil
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithTx(ctx context.Context, fn func(Repository, sessions.Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx), sessions.NewRepository(tx))
	})
}
