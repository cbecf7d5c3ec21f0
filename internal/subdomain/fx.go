package subdomain

import (
	"github.com/fiscalware/fiscalway/internal/subdomain/repository"
	"github.com/fiscalware/fiscalway/internal/subdomain/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subdomain.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
