package product

// Sort orders for catalog listings.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
)

// QueryProductsModel represents filter parameters for querying the catalog.
type QueryProductsModel struct {
	Search        string `json:"search,omitempty"`
	Category      string `json:"category,omitempty"`
	MaxPriceCents int64  `json:"maxPriceCents,omitempty"`
	VeganOnly     bool   `json:"veganOnly,omitempty"`
	GlutenFree    bool   `json:"glutenFree,omitempty"`
	SortBy        string `json:"sortBy,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}
