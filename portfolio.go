package pocket

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/pocket/date"
)

// AssetCategory is the class of an asset in the portfolio.
type AssetCategory string

const (
	RealEstate AssetCategory = "inmueble"
	Vehicle    AssetCategory = "vehiculo"
	Cash       AssetCategory = "efectivo"
	Deposit    AssetCategory = "deposito"
	Stock      AssetCategory = "accion"
	ETF        AssetCategory = "etf"
	Bond       AssetCategory = "bono"
	Fund       AssetCategory = "fondo"
	Crypto     AssetCategory = "cripto"
	Commodity  AssetCategory = "materia_prima"
	Currency   AssetCategory = "divisa"
	Other      AssetCategory = "otros"
)

// AssetCategories lists every known asset category.
var AssetCategories = []AssetCategory{RealEstate, Vehicle, Cash, Deposit, Stock, ETF, Bond, Fund, Crypto, Commodity, Currency, Other}

// ParseAssetCategory parses an asset category name. The empty string is [Other].
func ParseAssetCategory(s string) (AssetCategory, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Other, nil
	}
	for _, c := range AssetCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown asset category %q: %w", s, ErrInvalid)
}

// PortfolioTx is a buy (positive quantity) or a sell (negative quantity) of an asset.
type PortfolioTx struct {
	ID        ID            `json:"id"`
	Date      date.Date     `json:"date"`
	Asset     string        `json:"asset"`
	Symbol    string        `json:"symbol,omitempty"`
	Category  AssetCategory `json:"category"`
	Price     Money         `json:"price"` // per unit
	Quantity  Quantity      `json:"quantity"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"createdAt,omitzero"`
}

// Key identifies the position this entry contributes to.
func (p PortfolioTx) Key() string { return p.Asset + "|" + p.Symbol }

func (p PortfolioTx) Validate() error {
	switch {
	case p.Date.IsZero():
		return fmt.Errorf("portfolio entry %q has no date: %w", p.Asset, ErrInvalid)
	case strings.TrimSpace(p.Asset) == "":
		return fmt.Errorf("portfolio entry has no asset name: %w", ErrInvalid)
	case p.Price.IsNegative():
		return fmt.Errorf("portfolio entry %q has a negative price %v: %w", p.Asset, p.Price, ErrInvalid)
	case p.Quantity.IsZero():
		return fmt.Errorf("portfolio entry %q has a zero quantity: %w", p.Asset, ErrInvalid)
	}
	return nil
}
