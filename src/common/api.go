package common

import (
	"context"
	"errors"

	"tourbook/src/models"
	"tourbook/src/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// BookingFilter selects bookings by party, tour and status. Zero values
// are ignored.
type BookingFilter struct {
	TouristID uint
	GuideID   uint
	TourID    uint
	Status    types.BookingStatus
	StatusIn  []types.BookingStatus
}

// BookingAPI is the narrow contract the engine holds against the remote
// relational store. The store stays the single source of truth: its
// row-level policy may reject a write that passed local validation.
type BookingAPI interface {
	FetchBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	FindBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	InsertBooking(ctx context.Context, booking *models.Booking) error
	// UpdateBookingStatus is compare-and-swap on the current status, so a
	// racing writer observes a structured rejection instead of clobbering.
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to types.BookingStatus) error
}

type GormBookingAPI struct {
	db *gorm.DB
}

func NewGormBookingAPI(db *gorm.DB) *GormBookingAPI {
	return &GormBookingAPI{db: db}
}

func (g *GormBookingAPI) FetchBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	var bookings []models.Booking
	q := g.db.WithContext(ctx).
		Model(&models.Booking{}).
		Preload("Tour").
		Preload("Tourist").
		Preload("Guide")
	if filter.TouristID != 0 {
		q = q.Where("tourist_id = ?", filter.TouristID)
	}
	if filter.GuideID != 0 {
		q = q.Where("guide_id = ?", filter.GuideID)
	}
	if filter.TourID != 0 {
		q = q.Where("tour_id = ?", filter.TourID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if len(filter.StatusIn) > 0 {
		q = q.Where("status IN (?)", filter.StatusIn)
	}
	if err := q.Order("created_at desc").Find(&bookings).Error; err != nil {
		return nil, mapStoreError(err)
	}
	return bookings, nil
}

func (g *GormBookingAPI) FindBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := g.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Preload("Tour").
		First(&booking).
		Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &booking, nil
}

func (g *GormBookingAPI) InsertBooking(ctx context.Context, booking *models.Booking) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(booking).Error
	})
	if err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (g *GormBookingAPI) UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to types.BookingStatus) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return mapStoreError(res.Error)
		}
		if res.RowsAffected == 0 {
			var current models.Booking
			err := tx.
				Model(&models.Booking{}).
				Select("status").
				Where("id = ?", id).
				First(&current).
				Error
			if err != nil {
				return mapStoreError(err)
			}
			// Someone else won the race; the stored row is authoritative.
			return NewError(KindInvalidTransition, "booking is no longer %s (now %s)", from, current.Status)
		}
		return nil
	})
}

// mapStoreError translates remote-store failures into the engine taxonomy.
// P0001 is a server-side policy rejection (RAISE EXCEPTION) and surfaces as
// a permission error with the code preserved for diagnostics.
func mapStoreError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return WrapError(KindNotFound, "", err, "booking not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "P0001":
			return WrapError(KindPermissionDenied, pgErr.Code, err, "the server rejected this change")
		case pgErr.Code == "23505":
			return WrapError(KindInvalidArgument, pgErr.Code, err, "duplicate booking")
		case len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "57"):
			return WrapError(KindTransient, pgErr.Code, err, "temporary problem talking to the store")
		default:
			return WrapError(KindTransient, pgErr.Code, err, "unexpected store error")
		}
	}
	return WrapError(KindTransient, "", err, "unexpected store error")
}
