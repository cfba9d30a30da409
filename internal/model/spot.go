package model

import "time"

// Spot sections. The section decides the spot's size.
const (
	SectionCompact    = "Compact"
	SectionStandard   = "Standard"
	SectionLarge      = "Large"
	SectionDisabled   = "Disabled"
	SectionMotorcycle = "Motorcycle"
)

// Spot sizes derived from the section.
const (
	SizeSmall  = "Small"
	SizeMedium = "Medium"
	SizeLarge  = "Large"
)

// SizeForSection returns the size implied by a section and false for an
// unknown section.
func SizeForSection(section string) (string, bool) {
	switch section {
	case SectionCompact, SectionMotorcycle:
		return SizeSmall, true
	case SectionStandard:
		return SizeMedium, true
	case SectionLarge, SectionDisabled:
		return SizeLarge, true
	}
	return "", false
}

// ParkingSpot is a physical parking location.  IsOccupied tracks live
// occupancy and is independent of whether reservations exist for the spot.
//
// Fields:
//
//	ID         – primary key identifier.
//	Number     – unique spot label, e.g. "B-12".
//	Section    – category (Compact, Standard, Large, Disabled, Motorcycle).
//	Size       – derived from Section (Small, Medium, Large).
//	IsOccupied – physical occupancy flag.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type ParkingSpot struct {
	ID         uint64    `db:"id" json:"id"`                  // parking_spots.id
	Number     string    `db:"number" json:"number"`          // parking_spots.number
	Section    string    `db:"section" json:"section"`        // parking_spots.section
	Size       string    `db:"size" json:"size"`              // parking_spots.size
	IsOccupied bool      `db:"is_occupied" json:"isOccupied"` // parking_spots.is_occupied
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`   // parking_spots.created_at
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`   // parking_spots.updated_at
}
