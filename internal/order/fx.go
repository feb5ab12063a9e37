package order

import (
	"github.com/gewgegeg/BAT3D/internal/order/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("order",
	fx.Provide(repository.Provide),
)
