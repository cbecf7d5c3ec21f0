package encode

import (
	"strings"
	"testing"
	"time"

	"github.com/fiscalware/fiscalway/internal/fiscal/aggregate"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func amt(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestCents(t *testing.T) {
	assert.Equal(t, "1235", Cents(amt("12.345")))
	assert.Equal(t, "1234", Cents(amt("12.344")))
	assert.Equal(t, "12000", Cents(amt("120.00")))
	assert.Equal(t, "0", Cents(amt("0")))
	assert.Equal(t, "-3000", Cents(amt("-30.00")))
	// Negative ties round toward positive infinity.
	assert.Equal(t, "-3000", Cents(amt("-30.005")))
	assert.Equal(t, "-3001", Cents(amt("-30.006")))
}

func TestTaxPercent(t *testing.T) {
	assert.Equal(t, "", TaxPercent(nil))
	assert.Equal(t, "15.00", TaxPercent(pct("15")))
	assert.Equal(t, "15.50", TaxPercent(pct("15.5")))
	assert.Equal(t, "0.00", TaxPercent(pct("0")))
}

func TestCountersPayloadFragment(t *testing.T) {
	sum, err := aggregate.Summarize([]fiscaldomain.Counter{
		{Type: fiscaldomain.CounterSaleByTax, Currency: "USD", TaxPercent: pct("15"), Value: amt("120.00"), TaxAmountValue: pct("18.00")},
	})
	require.NoError(t, err)

	payload := CountersPayload(sum)
	assert.Contains(t, payload, "SALEBYTAXUSD15.0012000")
	assert.Contains(t, payload, "SALETAXBYTAXUSD15.001800")
}

func TestCountersPayloadBlockOrder(t *testing.T) {
	sum, err := aggregate.Summarize([]fiscaldomain.Counter{
		{Type: fiscaldomain.CounterSaleByTax, Currency: "USD", TaxPercent: pct("15"), MoneyType: "Cash", Value: amt("100.00"), TaxAmountValue: pct("15.00")},
		{Type: fiscaldomain.CounterCreditNoteByTax, Currency: "USD", TaxPercent: pct("15"), MoneyType: "Cash", Value: amt("30.00"), TaxAmountValue: pct("4.50")},
	})
	require.NoError(t, err)

	payload := CountersPayload(sum)

	idxCredit := strings.Index(payload, "CREDITNOTEBYTAX")
	idxCreditTax := strings.Index(payload, "CREDITNOTETAXBYTAX")
	idxSale := strings.Index(payload, "SALEBYTAXUSD")
	idxSaleTax := strings.Index(payload, "SALETAXBYTAX")
	idxBalance := strings.Index(payload, "BALANCEBYMONEYTYPE")

	require.NotEqual(t, -1, idxCredit)
	require.NotEqual(t, -1, idxCreditTax)
	require.NotEqual(t, -1, idxSale)
	require.NotEqual(t, -1, idxSaleTax)
	require.NotEqual(t, -1, idxBalance)

	assert.Less(t, idxCredit, idxCreditTax)
	assert.Less(t, idxCreditTax, idxSale)
	assert.Less(t, idxSale, idxSaleTax)
	assert.Less(t, idxSaleTax, idxBalance)

	// Credit note totals carry the negative sign.
	assert.Contains(t, payload, "CREDITNOTEBYTAXUSD15.00-3000")
	assert.Contains(t, payload, "BALANCEBYMONEYTYPEUSDCASH7000")
}

func TestCountersPayloadCurrencyOrder(t *testing.T) {
	sum, err := aggregate.Summarize([]fiscaldomain.Counter{
		{Type: fiscaldomain.CounterSaleByTax, Currency: "ZWG", TaxPercent: pct("15"), Value: amt("1.00")},
		{Type: fiscaldomain.CounterSaleByTax, Currency: "EUR", TaxPercent: pct("15"), Value: amt("1.00")},
		{Type: fiscaldomain.CounterSaleByTax, Currency: "EUR", TaxPercent: nil, Value: amt("1.00")},
	})
	require.NoError(t, err)

	payload := CountersPayload(sum)

	// EUR before ZWG; within EUR, the exempt bracket precedes 15.00.
	exempt := strings.Index(payload, "SALEBYTAXEUR100")
	eur15 := strings.Index(payload, "SALEBYTAXEUR15.00100")
	zwg := strings.Index(payload, "SALEBYTAXZWG15.00100")
	require.NotEqual(t, -1, exempt)
	require.NotEqual(t, -1, eur15)
	require.NotEqual(t, -1, zwg)
	assert.Less(t, exempt, eur15)
	assert.Less(t, eur15, zwg)
}

func TestDayPayloadPrefix(t *testing.T) {
	sum, err := aggregate.Summarize(nil)
	require.NoError(t, err)

	openedAt := time.Date(2025, 5, 2, 6, 30, 0, 0, time.UTC)
	payload := DayPayload(321, 5, openedAt, sum)
	assert.Equal(t, "32152025-05-02T06:30:00Z", payload)

	// Non-UTC input renders in UTC.
	loc := time.FixedZone("CAT", 2*60*60)
	payload = DayPayload(321, 5, openedAt.In(loc), sum)
	assert.Equal(t, "32152025-05-02T06:30:00Z", payload)
}
