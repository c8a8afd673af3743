package domain

import "time"

// Cigar is one line of a user's inventory.
type Cigar struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name" validate:"required,max=200"`
	Brand   string `json:"brand" validate:"required,max=200"`
	Origin  string `json:"origin,omitempty" validate:"max=100"`
	Size    string `json:"size,omitempty" validate:"max=100"`
	Wrapper string `json:"wrapper,omitempty" validate:"max=100"`

	// Strength is an ordinal from 1 (mild) to 5 (full).
	Strength int `json:"strength" validate:"gte=1,lte=5"`
	// Price is the unit price.
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`

	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	Notes        string     `json:"notes,omitempty" validate:"max=2000"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available reports whether at least one unit is on hand.
func (c *Cigar) Available() bool {
	return c.Quantity > 0
}

// Value is price times quantity.
func (c *Cigar) Value() float64 {
	return c.Price * float64(c.Quantity)
}

// CigarPatch carries a partial inventory update. Nil fields are left as they are.
type CigarPatch struct {
	Name         *string    `json:"name,omitempty"`
	Brand        *string    `json:"brand,omitempty"`
	Origin       *string    `json:"origin,omitempty"`
	Size         *string    `json:"size,omitempty"`
	Wrapper      *string    `json:"wrapper,omitempty"`
	Strength     *int       `json:"strength,omitempty"`
	Price        *float64   `json:"price,omitempty"`
	Quantity     *int       `json:"quantity,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// Apply copies every non-nil field of p onto c.
func (p CigarPatch) Apply(c *Cigar) {
	setIf(&c.Name, p.Name)
	setIf(&c.Brand, p.Brand)
	setIf(&c.Origin, p.Origin)
	setIf(&c.Size, p.Size)
	setIf(&c.Wrapper, p.Wrapper)
	setIf(&c.Strength, p.Strength)
	setIf(&c.Price, p.Price)
	setIf(&c.Quantity, p.Quantity)
	setIf(&c.Notes, p.Notes)
	if p.PurchaseDate != nil {
		d := *p.PurchaseDate
		c.PurchaseDate = &d
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
