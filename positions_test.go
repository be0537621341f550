package pocket

import (
	"testing"

	"github.com/etnz/pocket/date"
)

func buy(on, asset string, q float64, price float64) PortfolioTx {
	return PortfolioTx{Date: date.MustParse(on), Asset: asset, Category: Stock, Price: EUR(price), Quantity: Q(q)}
}

func TestPositions_AverageCost(t *testing.T) {
	got := Positions([]PortfolioTx{
		buy("2025-01-02", "ACME", 10, 100),
		buy("2025-01-03", "ACME", 5, 200),
	})
	if len(got) != 1 {
		t.Fatalf("len(Positions()) = %d, want 1", len(got))
	}
	p := got[0]
	if want := Q(15); !p.Quantity.Equal(want) {
		t.Errorf("Quantity = %v, want %v", p.Quantity, want)
	}
	if want := EUR(2000); !p.CostBasis.Equal(want) {
		t.Errorf("CostBasis = %v, want %v", p.CostBasis, want)
	}
	if want := EUR(133.33); !p.AverageCost.Rounded().Equal(want) {
		t.Errorf("AverageCost = %v, want %v", p.AverageCost, want)
	}
	if p.Category != Stock {
		t.Errorf("Category = %q, want %q", p.Category, Stock)
	}
}

func TestPositions_FullSell(t *testing.T) {
	got := Positions([]PortfolioTx{
		buy("2025-01-02", "ACME", 10, 100),
		buy("2025-01-03", "BOND", 1, 1000),
		buy("2025-01-04", "ACME", -10, 120),
	})
	if len(got) != 1 || got[0].Asset != "BOND" {
		t.Errorf("Positions() = %v, want only BOND", got)
	}
}

func TestPositions_Negligible(t *testing.T) {
	got := Positions([]PortfolioTx{
		buy("2025-01-02", "BTC", 0.3, 100),
		buy("2025-01-03", "BTC", -0.1, 100),
		buy("2025-01-03", "BTC", -0.2000000001, 100),
	})
	if len(got) != 0 {
		t.Errorf("Positions() = %v, want none", got)
	}
}

func TestPositions_KeyAndOrder(t *testing.T) {
	a := buy("2025-01-02", "Gold", 1, 10)
	b := buy("2025-01-02", "Gold", 2, 10)
	b.Symbol = "XAU"
	c := buy("2025-01-02", "Apple", 1, 10)
	got := Positions([]PortfolioTx{a, b, c})
	var keys []string
	for _, p := range got {
		keys = append(keys, p.Asset+"|"+p.Symbol)
	}
	want := []string{"Apple|", "Gold|", "Gold|XAU"}
	if len(keys) != len(want) {
		t.Fatalf("Positions() keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Positions() keys = %v, want %v", keys, want)
			break
		}
	}
}
