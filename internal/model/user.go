package model

// BookedVendor marks one vendor a user has booked, with the vendor's
// category recorded so the one-booking-per-category rule can be enforced
// without a vendor lookup.
type BookedVendor struct {
	VendorID   string `json:"vendorId"`
	VendorType string `json:"vendorType"`
}

// User is the slice of the account record this pipeline reads and writes:
// the discovered-vendor set and the booked-vendor set. Account lifecycle
// (auth, profile, etc.) is owned upstream.
type User struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	VendorIDs     []string       `json:"vendorIds"`
	BookedVendors []BookedVendor `json:"bookedVendors"`
}

// HasVendor reports whether the vendor is already in the user's
// discovered-vendor set.
func (u *User) HasVendor(vendorID string) bool {
	for _, id := range u.VendorIDs {
		if id == vendorID {
			return true
		}
	}
	return false
}

// BookingFor returns the user's booking entry for the given vendor, if any.
func (u *User) BookingFor(vendorID string) (BookedVendor, bool) {
	for _, b := range u.BookedVendors {
		if b.VendorID == vendorID {
			return b, true
		}
	}
	return BookedVendor{}, false
}

// BookingOfType returns the user's booking entry for the given vendor
// category, if any. At most one exists.
func (u *User) BookingOfType(vendorType string) (BookedVendor, bool) {
	for _, b := range u.BookedVendors {
		if b.VendorType == vendorType {
			return b, true
		}
	}
	return BookedVendor{}, false
}
