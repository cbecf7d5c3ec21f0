// Package tenantctx carries the taxpayer tenant identity through request
// contexts.
package tenantctx

import "context"

type keyType string

const (
	TaxpayerIDKey keyType = "taxpayer_id"
)

func WithTaxpayerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, TaxpayerIDKey, id)
}

func TaxpayerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(TaxpayerIDKey).(int64)
	return id, ok
}
