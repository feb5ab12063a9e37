package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gewgegeg/BAT3D/internal/audit"
	"github.com/gewgegeg/BAT3D/internal/cart"
	"github.com/gewgegeg/BAT3D/internal/clock"
	"github.com/gewgegeg/BAT3D/internal/config"
	"github.com/gewgegeg/BAT3D/internal/logger"
	"github.com/gewgegeg/BAT3D/internal/migration"
	"github.com/gewgegeg/BAT3D/internal/notification"
	"github.com/gewgegeg/BAT3D/internal/observability/metrics"
	"github.com/gewgegeg/BAT3D/internal/order"
	"github.com/gewgegeg/BAT3D/internal/payment"
	"github.com/gewgegeg/BAT3D/internal/providers/email"
	"github.com/gewgegeg/BAT3D/internal/seed"
	"github.com/gewgegeg/BAT3D/internal/server"
	"github.com/gewgegeg/BAT3D/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		seed.Module,
		metrics.Module,

		audit.Module,
		order.Module,
		cart.Module,
		email.Module,
		notification.Module,
		payment.Module,

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
