package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	"github.com/fiscalware/fiscalway/pkg/db/pagination"
)

// ListByTaxpayerRequest filters the tenant receipt listing.
type ListByTaxpayerRequest struct {
	TaxpayerID snowflake.ID
	Search     string
	Page       pagination.Pagination
}

// Repository persists receipts. Save commits the receipt row, the device
// counter bump and the fiscal counter fan-out in one transaction: a receipt
// must never exist without its counters, and counters must never exist
// without their receipt.
type Repository interface {
	Save(ctx context.Context, r *Receipt, dev *devicedomain.Device, counters []fiscaldomain.Counter) error
	FindByID(ctx context.Context, id snowflake.ID) (*Receipt, error)
	ListByDevice(ctx context.Context, deviceID int64, limit int) ([]Receipt, error)
	ListByTaxpayer(ctx context.Context, req ListByTaxpayerRequest) ([]*Receipt, *pagination.PageInfo, error)
}
