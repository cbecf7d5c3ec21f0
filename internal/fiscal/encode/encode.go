// Package encode renders aggregated fiscal day totals into the canonical
// payload string that gets hashed and signed. The format is an external
// contract: the revenue authority's verifier reproduces the exact byte
// sequence independently, so there is no whitespace, no separators and no
// locale-dependent formatting anywhere in the output.
package encode

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiscalware/fiscalway/internal/fiscal/aggregate"
)

const (
	labelSaleByTax          = "SALEBYTAX"
	labelSaleTaxByTax       = "SALETAXBYTAX"
	labelCreditNoteByTax    = "CREDITNOTEBYTAX"
	labelCreditNoteTaxByTax = "CREDITNOTETAXBYTAX"
	labelBalanceByMoneyType = "BALANCEBYMONEYTYPE"
)

// CountersPayload serializes the five total blocks in the mandated order:
// credit note gross, credit note tax, sale gross, sale tax, balances.
func CountersPayload(sum *aggregate.Summary) string {
	var b strings.Builder

	credits := sum.CreditNotes()
	sales := sum.Sales()

	writeTaxBlock(&b, labelCreditNoteByTax, credits, grossAmount)
	writeTaxBlock(&b, labelCreditNoteTaxByTax, credits, taxAmount)
	writeTaxBlock(&b, labelSaleByTax, sales, grossAmount)
	writeTaxBlock(&b, labelSaleTaxByTax, sales, taxAmount)

	for _, group := range sum.Balances() {
		b.WriteString(labelBalanceByMoneyType)
		b.WriteString(strings.ToUpper(group.Currency))
		b.WriteString(strings.ToUpper(group.MoneyType))
		b.WriteString(Cents(group.Amount))
	}

	return b.String()
}

// DayPayload prefixes the counters payload with the device identity fields:
// device ID, the pre-increment fiscal day number and the day open timestamp.
// The timestamp is rendered as RFC 3339 in UTC so replaying a close after a
// failure reproduces the identical signing string.
func DayPayload(deviceID, lastFiscalDayNo int64, openedAt time.Time, sum *aggregate.Summary) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(deviceID, 10))
	b.WriteString(strconv.FormatInt(lastFiscalDayNo, 10))
	b.WriteString(openedAt.UTC().Format(time.RFC3339))
	b.WriteString(CountersPayload(sum))
	return b.String()
}

// ReceiptPayload serializes one receipt's identity fields into its signing
// string: device ID, uppercased receipt type and currency, global number,
// RFC 3339 UTC timestamp, total in cents, then the hash of the previous
// receipt on the same device. The trailing hash chains every receipt to its
// predecessor; the first receipt of a device appends nothing.
func ReceiptPayload(deviceID int64, receiptType, currency string, globalNo int64, date time.Time, total decimal.Decimal, previousHash string) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(deviceID, 10))
	b.WriteString(strings.ToUpper(receiptType))
	b.WriteString(strings.ToUpper(currency))
	b.WriteString(strconv.FormatInt(globalNo, 10))
	b.WriteString(date.UTC().Format(time.RFC3339))
	b.WriteString(Cents(total))
	b.WriteString(previousHash)
	return b.String()
}

// TaxPercent renders a tax percent with exactly two decimals, empty for the
// exempt bracket.
func TaxPercent(p *decimal.Decimal) string {
	if p == nil {
		return ""
	}
	return p.StringFixed(2)
}

// Cents rounds an amount half-up to the nearest cent and renders it as an
// integer number of cents: 12.345 encodes as "1235", 12.344 as "1234".
// Ties round toward positive infinity, so a credit total of -30.005 encodes
// as "-3000", not "-3001".
func Cents(amount decimal.Decimal) string {
	return amount.Shift(2).Add(decimal.New(5, -1)).Floor().String()
}

func writeTaxBlock(b *strings.Builder, label string, groups []aggregate.TaxGroup, amount func(aggregate.TaxGroup) decimal.Decimal) {
	for _, group := range groups {
		b.WriteString(label)
		b.WriteString(strings.ToUpper(group.Currency))
		b.WriteString(TaxPercent(group.TaxPercent))
		b.WriteString(Cents(amount(group)))
	}
}

func grossAmount(g aggregate.TaxGroup) decimal.Decimal { return g.Gross }

func taxAmount(g aggregate.TaxGroup) decimal.Decimal { return g.Tax }
