package notification

import (
	"github.com/gewgegeg/BAT3D/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(service.New),
)
