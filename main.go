package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"Caribou/Config"
	"Caribou/FiberConfig"
	"Caribou/Logging"
	"Caribou/Models"
)

func main() {
	Config.Load()
	if err := Logging.Init(Config.Cfg.Env, Config.Cfg.LogLevel); err != nil {
		// zap is not up yet, stdlib log is all we have
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer zap.L().Sync()

	if err := os.MkdirAll(Config.Cfg.AttachmentDir, 0o755); err != nil {
		zap.L().Fatal("cannot create attachment directory", zap.Error(err))
	}

	Models.Connect()
	FiberConfig.FiberConfig()
}
