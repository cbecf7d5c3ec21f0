package device

import (
	"github.com/fiscalware/fiscalway/internal/device/repository"
	"github.com/fiscalware/fiscalway/internal/device/service"
	"go.uber.org/fx"
)

var Module = fx.Module("device.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
