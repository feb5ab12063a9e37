package payment

import (
	"github.com/gewgegeg/BAT3D/internal/config"
	"github.com/gewgegeg/BAT3D/internal/payment/domain"
	"github.com/gewgegeg/BAT3D/internal/payment/iptrust"
	"github.com/gewgegeg/BAT3D/internal/payment/service"
	"github.com/gewgegeg/BAT3D/internal/payment/yookassa"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("payment.service",
	fx.Provide(
		func(cfg config.Config, log *zap.Logger) domain.Client {
			return yookassa.NewClient(cfg.YooKassa, log)
		},
		func(cfg config.Config, log *zap.Logger) *iptrust.Filter {
			return iptrust.New(cfg.YooKassa.TrustedNetworks, cfg.YooKassa.RelaxedIPCheck, log)
		},
		service.New,
	),
)
