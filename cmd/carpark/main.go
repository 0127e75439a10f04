package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/carpark/internal/archive"
	"github.com/smallbiznis/carpark/internal/clock"
	"github.com/smallbiznis/carpark/internal/config"
	"github.com/smallbiznis/carpark/internal/ledger"
	"github.com/smallbiznis/carpark/internal/migration"
	"github.com/smallbiznis/carpark/internal/observability"
	"github.com/smallbiznis/carpark/internal/plate"
	"github.com/smallbiznis/carpark/internal/server"
	"github.com/smallbiznis/carpark/internal/tariff"
	"github.com/smallbiznis/carpark/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		plate.Module,
		tariff.Module,
		archive.Module,
		ledger.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
