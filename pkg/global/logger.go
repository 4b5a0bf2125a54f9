package global

import (
	"os"

	"go.uber.org/zap"
)

// Logger is the process-wide structured logger. InitLogger must run before
// any handler or service touches it.
var Logger *zap.Logger

func InitLogger() {
	var err error
	if os.Getenv("ENV") == "production" {
		Logger, err = zap.NewProduction()
	} else {
		Logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
}
