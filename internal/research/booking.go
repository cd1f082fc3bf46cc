package research

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/aisleworks/vendor-research/internal/model"
	"github.com/aisleworks/vendor-research/internal/store"
)

// BookingManager toggles booked vendors for a user, enforcing at most
// one booked vendor per category.
type BookingManager struct {
	store store.Store
}

// NewBookingManager creates a BookingManager.
func NewBookingManager(st store.Store) *BookingManager {
	return &BookingManager{store: st}
}

// Toggle books vendorID for the user, or un-books it if it is already
// booked. Booking a second vendor in an already-booked category is
// rejected without mutation via a TYPE_ALREADY_BOOKED result.
//
// A missing user or vendor is a hard error wrapping store.ErrNotFound.
func (m *BookingManager) Toggle(ctx context.Context, userID, vendorID string) (*model.BookingResult, error) {
	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "booking: load user")
	}
	vendor, err := m.store.GetVendorByID(ctx, vendorID)
	if err != nil {
		return nil, eris.Wrap(err, "booking: load vendor")
	}

	if _, booked := user.BookingFor(vendorID); booked {
		if err := m.store.SetBookedVendors(ctx, userID, without(user.BookedVendors, vendorID)); err != nil {
			return nil, eris.Wrap(err, "booking: remove booking")
		}
		return &model.BookingResult{
			Added:   false,
			Message: model.BookingCodeUnbooked,
		}, nil
	}

	if _, taken := user.BookingOfType(vendor.VendorType); taken {
		return &model.BookingResult{
			Added:      false,
			Message:    model.BookingCodeTypeAlreadyBooked,
			VendorType: vendor.VendorType,
		}, nil
	}

	booked := append(user.BookedVendors, model.BookedVendor{
		VendorID:   vendor.ID,
		VendorType: vendor.VendorType,
	})
	if err := m.store.SetBookedVendors(ctx, userID, booked); err != nil {
		return nil, eris.Wrap(err, "booking: add booking")
	}
	return &model.BookingResult{
		Added:      true,
		Message:    model.BookingCodeBooked,
		VendorType: vendor.VendorType,
	}, nil
}

// Cancel removes the booking for vendorID if present and reports
// whether a removal occurred. A missing booking is not an error.
func (m *BookingManager) Cancel(ctx context.Context, userID, vendorID string) (bool, error) {
	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return false, eris.Wrap(err, "booking: load user")
	}

	if _, booked := user.BookingFor(vendorID); !booked {
		return false, nil
	}

	if err := m.store.SetBookedVendors(ctx, userID, without(user.BookedVendors, vendorID)); err != nil {
		return false, eris.Wrap(err, "booking: remove booking")
	}
	return true, nil
}

func without(booked []model.BookedVendor, vendorID string) []model.BookedVendor {
	out := make([]model.BookedVendor, 0, len(booked))
	for _, b := range booked {
		if b.VendorID != vendorID {
			out = append(out, b)
		}
	}
	return out
}
