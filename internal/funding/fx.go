package funding

import (
	"github.com/ninjapaylabs/ninjapay/internal/funding/repository"
	"github.com/ninjapaylabs/ninjapay/internal/funding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("funding.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
