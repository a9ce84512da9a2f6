package main

import (
	"fmt"
	"log"

	corecmd "github.com/m3rciful/reviewbot/core/cmd"
	"github.com/m3rciful/reviewbot/review/tgbot"
)

func main() {
	var app *tgbot.App
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return tgbot.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			botCfg, ok := cfg.(*tgbot.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			a, err := tgbot.Bootstrap(botCfg)
			if err != nil {
				return nil, err
			}
			app = a
			return a, nil
		},
	})
	if app != nil {
		if cerr := app.Close(); cerr != nil {
			log.Printf("close: %v", cerr)
		}
	}
	if err != nil {
		log.Fatalf("reviewbot: %v", err)
	}
}
