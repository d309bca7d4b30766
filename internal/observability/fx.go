package observability

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func NewLogger() (*zap.Logger, error) {
	if os.Getenv("NINJAPAY_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
)
