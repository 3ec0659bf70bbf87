package product

import (
	"encoding/json"
	"fmt"
)

// Kind separates one-time credit packs from premium subscriptions.
type Kind string

const (
	KindCredits Kind = "credits"
	KindPremium Kind = "premium"
)

type Product struct {
	Kind    Kind `json:"kind"`
	Credits int  `json:"credits,omitempty"`
	Days    int  `json:"days,omitempty"`
}

// Catalog maps Google Play product ids to their credit amount or premium
// duration. It is injected into the ledger service so pricing changes are
// a config change, not a code change.
type Catalog map[string]Product

// DefaultCatalog returns the built-in product table.
func DefaultCatalog() Catalog {
	return Catalog{
		"credits_5":       {Kind: KindCredits, Credits: 5},
		"credits_10":      {Kind: KindCredits, Credits: 10},
		"credits_25":      {Kind: KindCredits, Credits: 25},
		"credits_50":      {Kind: KindCredits, Credits: 50},
		"premium_monthly": {Kind: KindPremium, Days: 30},
		"premium_3months": {Kind: KindPremium, Days: 90},
		"premium_yearly":  {Kind: KindPremium, Days: 365},
	}
}

// CatalogFromJSON parses a catalog override, e.g. from the
// PRODUCT_CATALOG_JSON environment variable.
func CatalogFromJSON(data []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse product catalog: %w", err)
	}
	return c, nil
}

// CreditAmount returns the credit amount for a product id, or 0 when the
// id is unknown or not a credit pack. Callers treat 0 as invalid.
func (c Catalog) CreditAmount(productID string) int {
	p, ok := c[productID]
	if !ok || p.Kind != KindCredits {
		return 0
	}
	return p.Credits
}

// PremiumDays returns the premium duration in days for a product id, or 0
// when the id is unknown or not a subscription.
func (c Catalog) PremiumDays(productID string) int {
	p, ok := c[productID]
	if !ok || p.Kind != KindPremium {
		return 0
	}
	return p.Days
}
