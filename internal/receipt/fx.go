package receipt

import (
	"github.com/fiscalware/fiscalway/internal/receipt/repository"
	"github.com/fiscalware/fiscalway/internal/receipt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("receipt.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
