// Package aggregate reduces the fiscal counters of one (device, fiscal day)
// into the grouped totals the canonical encoder serializes.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fiscalware/fiscalway/internal/fiscal/domain"
)

// TaxGroup is the summed totals for one (currency, tax percent) bracket.
// Gross accumulates counter values, Tax accumulates the tax-only portion.
type TaxGroup struct {
	Currency   string
	TaxPercent *decimal.Decimal
	TaxID      *int64
	Gross      decimal.Decimal
	Tax        decimal.Decimal
}

// BalanceGroup is the signed payment total for one (currency, money type).
type BalanceGroup struct {
	Currency  string
	MoneyType string
	Amount    decimal.Decimal
}

// taxKey identifies a tax bracket group. The percent component is the
// canonical two-decimal rendering so 15, 15.0 and 15.00 land in one group;
// the empty string marks the tax-exempt bracket.
type taxKey struct {
	currency string
	percent  string
}

// balanceKey identifies a balance group.
type balanceKey struct {
	currency  string
	moneyType string
}

// Summary holds the aggregated totals of one fiscal day. Group order is
// fixed by explicit comparators, independent of counter iteration order.
type Summary struct {
	sales    map[taxKey]*TaxGroup
	credits  map[taxKey]*TaxGroup
	balances map[balanceKey]*BalanceGroup
}

// Summarize folds counters into a Summary. A counter with an unrecognized
// type aborts the whole aggregation: the close attempt must not partially
// encode. Missing value or tax amount contributes zero.
func Summarize(counters []domain.Counter) (*Summary, error) {
	s := &Summary{
		sales:    make(map[taxKey]*TaxGroup),
		credits:  make(map[taxKey]*TaxGroup),
		balances: make(map[balanceKey]*BalanceGroup),
	}

	for _, c := range counters {
		if !c.Type.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCounterType, string(c.Type))
		}

		value := c.Value
		tax := decimal.Zero
		if c.TaxAmountValue != nil {
			tax = *c.TaxAmountValue
		}

		switch c.Type {
		case domain.CounterSaleByTax:
			s.addTax(s.sales, c, value, tax)
		case domain.CounterCreditNoteByTax:
			s.addTax(s.credits, c, value.Neg(), tax.Neg())
		}

		// Every counter carrying a money type feeds the balance totals,
		// credit notes with a negative sign.
		if moneyType := strings.TrimSpace(c.MoneyType); moneyType != "" {
			amount := value
			if c.Type == domain.CounterCreditNoteByTax {
				amount = value.Neg()
			}
			s.addBalance(c.Currency, moneyType, amount)
		}
	}

	return s, nil
}

func (s *Summary) addTax(groups map[taxKey]*TaxGroup, c domain.Counter, value, tax decimal.Decimal) {
	key := taxKey{currency: c.Currency, percent: percentKey(c.TaxPercent)}
	group, ok := groups[key]
	if !ok {
		group = &TaxGroup{
			Currency:   c.Currency,
			TaxPercent: c.TaxPercent,
			TaxID:      c.TaxID,
		}
		groups[key] = group
	}
	group.Gross = group.Gross.Add(value)
	group.Tax = group.Tax.Add(tax)
}

func (s *Summary) addBalance(currency, moneyType string, amount decimal.Decimal) {
	key := balanceKey{currency: currency, moneyType: moneyType}
	group, ok := s.balances[key]
	if !ok {
		group = &BalanceGroup{Currency: currency, MoneyType: moneyType}
		s.balances[key] = group
	}
	group.Amount = group.Amount.Add(amount)
}

// Sales returns the SaleByTax groups sorted by the canonical order.
func (s *Summary) Sales() []TaxGroup { return sortedTaxGroups(s.sales) }

// CreditNotes returns the CreditNoteByTax groups sorted by the canonical order.
func (s *Summary) CreditNotes() []TaxGroup { return sortedTaxGroups(s.credits) }

// Balances returns the BalanceByMoneyType groups sorted by the canonical order.
func (s *Summary) Balances() []BalanceGroup {
	out := make([]BalanceGroup, 0, len(s.balances))
	for _, group := range s.balances {
		out = append(out, *group)
	}
	sortBalanceGroups(out)
	return out
}

func percentKey(p *decimal.Decimal) string {
	if p == nil {
		return ""
	}
	return p.StringFixed(2)
}
