package domain

import "time"

// Listing is one marketplace search result, uniquely identified by its URL.
// Title and price are stored exactly as scraped; PriceValue is parsed once at
// insertion time and stays nil when the price text is not numeric.
type Listing struct {
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	Price      string    `json:"price"`
	PriceValue *float64  `json:"price_value,omitempty"`
	URL        string    `json:"url"`
	ObservedAt time.Time `json:"observed_at"`
}

// Keyword is a user-managed search term.
type Keyword struct {
	Text string `json:"keyword"`
}

// SortField selects the listing column to order by.
type SortField string

// SortOrder selects the direction.
type SortOrder string

const (
	SortByDate  SortField = "date"
	SortByPrice SortField = "price"

	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// SortSpec describes how a listing query should be ordered.
type SortSpec struct {
	By    SortField
	Order SortOrder
}

// DefaultSort is newest-first, the order the listing feed always used.
var DefaultSort = SortSpec{By: SortByDate, Order: OrderDesc}

// ParseSortSpec maps query-level sort parameters onto a SortSpec.
// Unrecognized or empty values fall back to date descending.
func ParseSortSpec(by, order string) SortSpec {
	spec := DefaultSort
	switch SortField(by) {
	case SortByDate, SortByPrice:
		spec.By = SortField(by)
	}
	switch SortOrder(order) {
	case OrderAsc, OrderDesc:
		spec.Order = SortOrder(order)
	}
	return spec
}
