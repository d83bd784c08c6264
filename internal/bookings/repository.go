package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ticketly/internal/events"
	"ticketly/internal/sessions"
	"ticketly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	// GetByIDForUpdate loads the booking and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID string, query ListQuery) ([]Booking, int64, error)
	// MarkCancelled flips a live booking to cancelled; false when it was not live
	MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

// Repos are the repositories one booking transaction works with
type Repos struct {
	Bookings Repository
	Events   events.Repository
	Sessions sessions.Inventory
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(repos Repos) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repository) get(db *gorm.DB, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := db.Preload("Seats").Preload("TicketsSummary").Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking %s not found", id)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, query ListQuery) ([]Booking, int64, error) {
	var (
		bookings   []Booking
		totalCount int64
	)
	query = query.withDefaults()

	baseQuery := r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID)
	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	err := baseQuery.
		Preload("Seats").
		Preload("TicketsSummary").
		Order("created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, totalCount, nil
}

func (r *repository) MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status IN ?", id, []Status{StatusPending, StatusConfirmed}).
		Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithTx(ctx context.Context, fn func(Repos) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos{
			Bookings: NewRepository(tx),
			Events:   events.NewRepository(tx),
			Sessions: sessions.NewRepository(tx),
		})
	})
}

func (q ListQuery) withDefaults() ListQuery {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	return q
}

// CalculateTotalPages returns how many pages of size limit hold totalCount rows
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
