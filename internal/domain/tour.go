package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Tour struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TravelID  uuid.UUID `db:"travel_id" json:"travel_id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	// Price is stored in minor units (cents) to avoid floating-point
	// rounding. PriceString renders the wire representation.
	Price     int64     `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Images   []Image   `db:"-" json:"images,omitempty"`
	Comments []Comment `db:"-" json:"comments,omitempty"`
}

func (t Tour) PriceString() string {
	return FormatMinorUnits(t.Price)
}

// ParseMinorUnits reads a decimal price string into cents, e.g. "99.22" ->
// 9922. At most two fraction digits are accepted.
func ParseMinorUnits(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty price")
	}
	negative := false
	if value[0] == '-' {
		negative = true
		value = value[1:]
	}

	whole, frac := value, ""
	if idx := strings.IndexByte(value, '.'); idx >= 0 {
		whole, frac = value[:idx], value[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("price %q has more than two fraction digits", value)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", value)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", value)
	}

	minor := units*100 + cents
	if negative {
		minor = -minor
	}
	return minor, nil
}

// FormatMinorUnits renders cents as a fixed two-decimal string, e.g. 9922 -> "99.22".
func FormatMinorUnits(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

type TourSortField string

const (
	TourSortPrice     TourSortField = "price"
	TourSortStartDate TourSortField = "start_date"
	TourSortEndDate   TourSortField = "end_date"
)

// TourListFilter carries the recognised tour listing parameters. Nil fields
// add no predicate.
type TourListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	PriceFrom *int64
	PriceTo   *int64
	SortBy    TourSortField
	SortOrder SortOrder
	Page      int
}

type TourChangeFields struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	Price     *int64
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)
