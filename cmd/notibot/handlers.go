package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mkarpov/notibot/internal/bot"
	"github.com/mkarpov/notibot/internal/config"
	"github.com/mkarpov/notibot/internal/metrics"
	"github.com/mkarpov/notibot/internal/scheduler"
	"github.com/mkarpov/notibot/internal/store"
	"github.com/mkarpov/notibot/pkg/horoscope"
	"github.com/mkarpov/notibot/pkg/openrouter"
)

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func buildProvider(cfg *config.Config) *openrouter.Client {
	if cfg.Provider.APIKey == "" {
		return nil
	}
	return openrouter.New(
		cfg.Provider.APIKey,
		cfg.Provider.BaseURL,
		cfg.Provider.Temperature,
		cfg.Provider.MaxTokens,
		cfg.Provider.ParseTimeout(),
	)
}

func buildSource(cfg *config.Config, db store.Store, llm *openrouter.Client) horoscope.Source {
	if cfg.Horoscope.Source == "feed" || llm == nil {
		return horoscope.NewFeed(cfg.Horoscope.FeedURL)
	}
	return horoscope.NewLLM(llm, db)
}

func runBot() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return errors.New("telegram token missing: set TELEGRAM_TOKEN or telegram.token")
	}

	log := buildLogger(cfg.LogLevel)
	defer log.Sync()

	db, err := store.New(cfg.Database.Path, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	llm := buildProvider(cfg)
	if llm == nil {
		log.Info("no provider key, chat commands disabled, push falls back to the feed source")
	}

	b, err := bot.New(cfg, db, llm, log)
	if err != nil {
		return fmt.Errorf("connect telegram: %w", err)
	}
	log.Info("connected", zap.String("username", b.Username()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, buildSource(cfg, db, llm), b,
		cfg.Notify.ParseInterval(), cfg.Notify.Location(), log)
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("scheduler stopped", zap.Error(err))
		}
	}()

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, log); err != nil {
				log.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runModels(setID int64) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path, zap.NewNop())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if setID > 0 {
		m, err := db.SetActiveModel(ctx, setID)
		if err != nil {
			return fmt.Errorf("switch model: %w", err)
		}
		fmt.Printf("active model: %d. %s (%s)\n", m.ID, m.Label, m.Key)
		return nil
	}

	models, err := db.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	if len(models) == 0 {
		fmt.Println("model registry is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACTIVE\tID\tLABEL\tKEY")
	for _, m := range models {
		marker := ""
		if m.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", marker, m.ID, m.Label, m.Key)
	}
	return w.Flush()
}

func runDue(date string, hour int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	now := time.Now().In(cfg.Notify.Location())
	if date == "" {
		date = now.Format("2006-01-02")
	}
	if hour < 0 {
		hour = now.Hour()
	}

	db, err := store.New(cfg.Database.Path, zap.NewNop())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	due, err := db.ListDueUsers(context.Background(), date, hour)
	if err != nil {
		return fmt.Errorf("list due users: %w", err)
	}
	if len(due) == 0 {
		fmt.Printf("no users due at hour %d on %s\n", hour, date)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tSIGN")
	for _, u := range due {
		fmt.Fprintf(w, "%d\t%s\n", u.UserID, u.Sign)
	}
	return w.Flush()
}
