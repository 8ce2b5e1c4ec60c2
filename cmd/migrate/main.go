// migrate applies or rolls back the embedded schema migrations; use go run ./cmd/migrate -direction up.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/shahwaiz14/event-tracker/internal/config"
	"github.com/shahwaiz14/event-tracker/internal/db/migrate"
	"github.com/shahwaiz14/event-tracker/internal/lib/logger/sl"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	steps := flag.Int("steps", 0, "Number of migrations to apply; 0 applies all")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", sl.Err(err))
		os.Exit(1)
	}

	res, err := migrate.Run(cfg.DatabaseURL, *direction, *steps)
	if err != nil {
		log.Error("migrate", slog.String("direction", *direction), sl.Err(err))
		os.Exit(1)
	}
	log.Info("migrations done",
		slog.String("direction", *direction),
		slog.Bool("changed", res.Changed),
		slog.Uint64("version", uint64(res.Version)),
		slog.Bool("dirty", res.Dirty),
	)
}
