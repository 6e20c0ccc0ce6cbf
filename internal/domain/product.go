package domain

type ProductCategory string

const (
	CategoryDigital  ProductCategory = "digital"
	CategoryClothing ProductCategory = "clothing"
	CategoryHome     ProductCategory = "home"
	CategoryBeauty   ProductCategory = "beauty"
	CategorySports   ProductCategory = "sports"
	CategoryCar      ProductCategory = "car"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusDraft    ProductStatus = "draft"
)

type Product struct {
	Meta
	Name          string          `json:"name"`
	Category      ProductCategory `json:"category"`
	Price         int64           `json:"price"`
	OriginalPrice int64           `json:"originalPrice"`
	Stock         int             `json:"stock"`
	Status        ProductStatus   `json:"status"`
	Description   string          `json:"description"`
	Images        []string        `json:"images,omitempty"`
	Features      []string        `json:"features,omitempty"`
	SalesCount    int             `json:"salesCount"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"reviewCount"`
}

// ProductPatch lists the mutable product fields. Identity, audit fields and
// SalesCount are not patchable; sales move only through RecordSale.
type ProductPatch struct {
	Name          *string          `json:"name,omitempty"`
	Category      *ProductCategory `json:"category,omitempty"`
	Price         *int64           `json:"price,omitempty"`
	OriginalPrice *int64           `json:"originalPrice,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
	Status        *ProductStatus   `json:"status,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Images        *[]string        `json:"images,omitempty"`
	Features      *[]string        `json:"features,omitempty"`
	Rating        *float64         `json:"rating,omitempty"`
	ReviewCount   *int             `json:"reviewCount,omitempty"`
}
