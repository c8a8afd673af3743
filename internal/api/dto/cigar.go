package dto

import (
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
)

// CigarRequest is the body for creating a cigar. Validation happens in the
// service so that every field error is reported together.
type CigarRequest struct {
	Name         string     `json:"name" doc:"Cigar name"`
	Brand        string     `json:"brand" doc:"Brand or manufacturer"`
	Origin       string     `json:"origin,omitempty" doc:"Country of origin"`
	Size         string     `json:"size,omitempty" doc:"Vitola, e.g. Robusto"`
	Wrapper      string     `json:"wrapper,omitempty" doc:"Wrapper leaf"`
	Strength     int        `json:"strength" doc:"Strength from 1 (mild) to 5 (full)"`
	Price        float64    `json:"price,omitempty" doc:"Unit price"`
	Quantity     int        `json:"quantity,omitempty" doc:"Units on hand"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty" doc:"Acquisition date"`
	Notes        string     `json:"notes,omitempty" doc:"Free-form notes"`
}

// Cigar converts the request into a domain value.
func (r CigarRequest) Cigar() domain.Cigar {
	return domain.Cigar{
		Name:         r.Name,
		Brand:        r.Brand,
		Origin:       r.Origin,
		Size:         r.Size,
		Wrapper:      r.Wrapper,
		Strength:     r.Strength,
		Price:        r.Price,
		Quantity:     r.Quantity,
		PurchaseDate: r.PurchaseDate,
		Notes:        r.Notes,
	}
}

// CreateCigarInput wraps the create request for huma.
type CreateCigarInput struct {
	Body CigarRequest
}

// UpdateCigarInput carries a partial update.
type UpdateCigarInput struct {
	IDPath
	Body domain.CigarPatch
}

// ListCigarsInput filters the inventory.
type ListCigarsInput struct {
	Search string `query:"search" doc:"Case and accent insensitive match on name, brand and origin"`
}

// AvailableCigarsInput filters the available view.
type AvailableCigarsInput struct {
	ExcludeActive bool `query:"exclude_active" doc:"Also hide cigars with a tasting in progress"`
}

// CigarOutput wraps a single cigar.
type CigarOutput struct {
	Body *domain.Cigar
}

// CigarListOutput wraps a cigar list.
type CigarListOutput struct {
	Body ListResponse[domain.Cigar]
}
