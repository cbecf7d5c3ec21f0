package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	"github.com/fiscalware/fiscalway/internal/config"
	"github.com/fiscalware/fiscalway/internal/device"
	"github.com/fiscalware/fiscalway/internal/fiscal"
	"github.com/fiscalware/fiscalway/internal/lock"
	"github.com/fiscalware/fiscalway/internal/migration"
	"github.com/fiscalware/fiscalway/internal/observability"
	"github.com/fiscalware/fiscalway/internal/receipt"
	"github.com/fiscalware/fiscalway/internal/scheduler"
	"github.com/fiscalware/fiscalway/internal/server"
	"github.com/fiscalware/fiscalway/internal/subdomain"
	"github.com/fiscalware/fiscalway/internal/subscription"
	"github.com/fiscalware/fiscalway/internal/taxpayer"
	"github.com/fiscalware/fiscalway/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		lock.Module,

		// Functional domains
		taxpayer.Module,
		subdomain.Module,
		subscription.Module,
		device.Module,
		fiscal.Module,
		receipt.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		log.Fatalf("snowflake node: %v", err)
	}
	return node
}
