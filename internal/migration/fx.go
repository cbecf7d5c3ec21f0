package migration

import (
	"github.com/fiscalware/fiscalway/internal/config"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	receiptdomain "github.com/fiscalware/fiscalway/internal/receipt/domain"
	subdomaindomain "github.com/fiscalware/fiscalway/internal/subdomain/domain"
	subscriptiondomain "github.com/fiscalware/fiscalway/internal/subscription/domain"
	taxpayerdomain "github.com/fiscalware/fiscalway/internal/taxpayer/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// sqlite and mysql deployments derive the schema from the models.
		return conn.AutoMigrate(
			&taxpayerdomain.Taxpayer{},
			&subdomaindomain.Subdomain{},
			&subscriptiondomain.Subscription{},
			&devicedomain.Device{},
			&receiptdomain.Receipt{},
			&fiscaldomain.Counter{},
			&fiscaldomain.DaySignature{},
		)
	}),
)
