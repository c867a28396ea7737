package catalog

// Brand groups products by manufacturer.
type Brand struct {
	ID   int64
	Name string
}

// Category groups products by shop section.
type Category struct {
	ID   int64
	Name string
}

// Product is a sellable item. BrandID and CategoryID are optional.
type Product struct {
	ID          int64
	Name        string
	Description string
	// Type is "regular" unless set (e.g. "keycard", "service").
	Type        string
	ExternalRef string // payment provider product id
	BrandID     *int64
	CategoryID  *int64
}

// Variant is a concrete purchasable option of a product.
type Variant struct {
	ID          int64
	ProductID   int64
	Name        string
	SKU         string
	Description string
}

// PriceTier is a quantity-based price for a variant.
type PriceTier struct {
	ID               int64
	VariantID        int64
	ExternalPriceRef string // payment provider price id
	MinQuantity      int
	UnitAmountCents  int64
	Currency         string
}

// Order is a customer order with its payment state.
type Order struct {
	ID                 int64
	Number             string
	Status             string
	PaymentStatus      string
	FulfillmentStatus  string
	Source             string
	PaymentMethod      string
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	ExternalPaymentRef string
	ExternalSessionRef string
	Notes              string
	TotalCents         int64
}

// Design is a printable keycard design.
type Design struct {
	ID          int64
	Name        string
	Code        string
	Description string
}

// LockTech is a lock technology a keycard can be encoded for.
type LockTech struct {
	ID   int64
	Name string
}

// Image is a media file attached to another entity.
type Image struct {
	ID         int64
	URL        string
	AltText    string
	EntityType string
	EntityID   int64
	SortOrder  int
}
