package cart

import (
	"github.com/gewgegeg/BAT3D/internal/cart/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cart.service",
	fx.Provide(service.New),
)
