package audit

import (
	"github.com/gewgegeg/BAT3D/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(service.New),
)
