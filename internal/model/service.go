package model

// Service is an optional paid add-on (car wash, EV charging) that can be
// attached to a reservation.  Name is unique.
type Service struct {
	ID          uint64 `db:"id" json:"id"`                   // services.id
	Name        string `db:"name" json:"name"`               // services.name
	Description string `db:"description" json:"description"` // services.description
	Price       Money  `db:"price_cents" json:"price"`       // services.price_cents
}
