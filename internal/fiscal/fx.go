package fiscal

import (
	"github.com/fiscalware/fiscalway/internal/fiscal/repository"
	"github.com/fiscalware/fiscalway/internal/fiscal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fiscal.service",
	fx.Provide(repository.NewCounterStore),
	fx.Provide(repository.NewDayStore),
	fx.Provide(service.NewService),
)
