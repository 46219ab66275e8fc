package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/cloudcopper/buildwatch"
	"github.com/cloudcopper/buildwatch/infra/config"
	"github.com/cloudcopper/buildwatch/lib"
)

const (
	retNoErrorCode      = 0
	retGenericErrorCode = 1
)

func main() {
	// Use file names from env BUILDWATCH_CONFIG and BUILDWATCH_CACHE
	// or config/config.yaml and config/cache.json
	config.ConfigFileName = lib.GetEnvDefault("BUILDWATCH_CONFIG", config.ConfigFileName)
	config.CacheFileName = lib.GetEnvDefault("BUILDWATCH_CACHE", config.CacheFileName)
	config.TimerSettleDelay = lib.GetEnvDurationDefault("BUILDWATCH_SETTLE", config.TimerSettleDelay)

	// Handle command line arguments
	flag.StringVar(&config.ConfigFileName, "config", config.ConfigFileName, "tracking config file name")
	flag.StringVar(&config.CacheFileName, "cache", config.CacheFileName, "build cache file name")
	flag.StringVar(&config.Listen, "listen", config.Listen, "status server listen address (disabled if empty)")
	flag.DurationVar(&config.TimerSettleDelay, "settle", config.TimerSettleDelay, "delay after log on before checking all apps")
	flag.DurationVar(&config.TimerPollInterval, "poll", config.TimerPollInterval, "platform poll interval")
	flag.StringVar(&config.SteamCmdURL, "steamcmd", config.SteamCmdURL, "steamcmd info api base url")
	flag.StringVar(&config.WorkflowAPIURL, "github", config.WorkflowAPIURL, "workflow dispatch api base url")
	flag.BoolVar(&config.Debug, "debug", config.Debug, "enable debug logs")
	flag.Parse()

	//
	// Create logger
	//
	if config.Debug {
		setDefaultLogger(slog.LevelDebug)
	}
	log := slog.Default()
	log.Info("starting")

	err := buildwatch.App(log)

	code := retNoErrorCode
	if err != nil {
		code = retGenericErrorCode
		if i, ok := err.(lib.ErrorCode); ok {
			code = i.Code()
		}
		log.Error("exit", slog.Int("code", code), slog.Any("err", err))
	} else {
		log.Info("exit")
	}

	os.Exit(code)
}
