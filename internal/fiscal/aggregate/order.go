package aggregate

import "sort"

// CompareTaxGroups orders tax groups ascending by currency, then by tax
// percent numerically with the exempt (nil) bracket first. Every pair of
// inputs yields a defined result; the revenue authority's verifier depends
// on the resulting order being total.
func CompareTaxGroups(a, b TaxGroup) int {
	if c := compareStrings(a.Currency, b.Currency); c != 0 {
		return c
	}
	switch {
	case a.TaxPercent == nil && b.TaxPercent == nil:
		return 0
	case a.TaxPercent == nil:
		return -1
	case b.TaxPercent == nil:
		return 1
	default:
		return a.TaxPercent.Cmp(*b.TaxPercent)
	}
}

// CompareBalanceGroups orders balance groups ascending by currency, then by
// money type lexicographically.
func CompareBalanceGroups(a, b BalanceGroup) int {
	if c := compareStrings(a.Currency, b.Currency); c != 0 {
		return c
	}
	return compareStrings(a.MoneyType, b.MoneyType)
}

func sortedTaxGroups(groups map[taxKey]*TaxGroup) []TaxGroup {
	out := make([]TaxGroup, 0, len(groups))
	for _, group := range groups {
		out = append(out, *group)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return CompareTaxGroups(out[i], out[j]) < 0
	})
	return out
}

func sortBalanceGroups(groups []BalanceGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return CompareBalanceGroups(groups[i], groups[j]) < 0
	})
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
