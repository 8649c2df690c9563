package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/allwin2012/Hr.io/internal/cli"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
