package subscription

import (
	"github.com/fiscalware/fiscalway/internal/subscription/repository"
	"github.com/fiscalware/fiscalway/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
