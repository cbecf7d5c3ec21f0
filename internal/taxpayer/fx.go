package taxpayer

import (
	"github.com/fiscalware/fiscalway/internal/taxpayer/repository"
	"github.com/fiscalware/fiscalway/internal/taxpayer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxpayer.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
