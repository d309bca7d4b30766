package payment

import (
	"github.com/ninjapaylabs/ninjapay/internal/payment/adapters"
	"github.com/ninjapaylabs/ninjapay/internal/payment/adapters/lnbits"
	"github.com/ninjapaylabs/ninjapay/internal/payment/adapters/opennode"
	paymentservice "github.com/ninjapaylabs/ninjapay/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(
			lnbits.NewFactory(),
			opennode.NewFactory(),
		)
	}),
	fx.Provide(paymentservice.New),
)
