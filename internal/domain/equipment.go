package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinConditionScore = 1
	MaxConditionScore = 10
)

type Equipment struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	Brand           string    `json:"brand"`
	Model           string    `json:"model"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	AgeYears        int       `json:"age_years"`
	DailyPriceCents int64     `json:"daily_price_cents"`
	Location        string    `json:"location"`
	State           string    `json:"state"`
	District        string    `json:"district"`
	Condition       int       `json:"condition"`
	ImagePaths      []string  `json:"image_paths"` // object storage keys, resolved by the client
	// Available is the shared reservation flag: false only while a booking holds the item.
	Available bool      `json:"availability"`
	ForRent   bool      `json:"for_rent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bookable reports whether a renter may currently reserve the item.
func (e *Equipment) Bookable() bool {
	return e.Available && e.ForRent
}

// Validate checks the owner-supplied fields of a new listing.
func (e *Equipment) Validate() error {
	if e.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if e.DailyPriceCents < 0 {
		return fmt.Errorf("%w: daily price must not be negative", ErrValidation)
	}
	if e.Condition < MinConditionScore || e.Condition > MaxConditionScore {
		return fmt.Errorf("%w: condition must be between %d and %d", ErrValidation, MinConditionScore, MaxConditionScore)
	}
	if e.AgeYears < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrValidation)
	}
	return nil
}

// EquipmentFilter narrows a catalog search. Zero values mean "any".
type EquipmentFilter struct {
	Category           string `json:"category,omitempty"`
	MaxDailyPriceCents int64  `json:"max_daily_price_cents,omitempty"`
	State              string `json:"state,omitempty"`
	District           string `json:"district,omitempty"`
}

// Matches applies the filter to a single item. Only bookable items ever match.
func (f EquipmentFilter) Matches(e *Equipment) bool {
	if !e.Bookable() {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.MaxDailyPriceCents > 0 && e.DailyPriceCents > f.MaxDailyPriceCents {
		return false
	}
	if f.State != "" && e.State != f.State {
		return false
	}
	if f.District != "" && e.District != f.District {
		return false
	}
	return true
}
