package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/TrainBox/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}
	if err := applyTimezone(cfg.TrainBox.Timezone); err != nil {
		panic(err)
	}

	app := buildTrainAPI(cfg, defaultAPIFactories(), os.Getenv("swaggerPath"))
	defer app.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil && err != context.Canceled {
		panic(err)
	}
}

// applyTimezone sets the calendar used for compact timestamps and display dates.
func applyTimezone(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", name, err)
	}
	time.Local = loc
	return nil
}
