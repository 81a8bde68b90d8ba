package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/joho/godotenv"

	"fleetwarden/internal/adapter/game/mock"
	"fleetwarden/internal/adapter/game/ratelimit"
	httpadapter "fleetwarden/internal/adapter/http"
	metricsinmem "fleetwarden/internal/adapter/metrics/inmemory"
	"fleetwarden/internal/adapter/notify/slogger"
	gormrepo "fleetwarden/internal/adapter/repo/gorm"
	memrepo "fleetwarden/internal/adapter/repo/memory"
	"fleetwarden/internal/app/agent"
	"fleetwarden/internal/app/defense"
	"fleetwarden/internal/app/escape"
	"fleetwarden/internal/app/expedition"
	"fleetwarden/internal/app/harvest"
	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/app/threat"
	"fleetwarden/internal/config"
	"fleetwarden/internal/domain/galaxy"
	"fleetwarden/internal/domain/physics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}
	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	expeditionRepo, notificationRepo := mustBuildRepos(cfg, logger)

	engine := physics.NewEngine(physics.ServerSettings{
		Galaxies:            cfg.Galaxies,
		Systems:             cfg.Systems,
		DonutGalaxy:         cfg.DonutGalaxy,
		DonutSystem:         cfg.DonutSystem,
		FleetSpeed:          cfg.FleetSpeed,
		DeuteriumSaveFactor: cfg.DeuteriumSaveFactor,
	})

	// Demo-mode game side. A real deployment swaps these three for an
	// adapter speaking the game server's protocol.
	provider := &mock.Provider{Snap: demoSnapshot()}
	scanner := &mock.Scanner{}
	sink := ratelimit.NewSink(&mock.Sink{}, cfg.CommandMinDelay, cfg.CommandTimeout)

	recorder := metricsinmem.NewRecorder()
	notifier := slogger.Notifier{Log: logger, Repo: notificationRepo}
	detector := threat.Detector{Policy: threat.DefaultPolicy()}

	expeditions := expedition.Scheduler{
		Engine:   engine,
		Detector: detector,
		Sink:     sink,
		Repo:     expeditionRepo,
		Notifier: notifier,
		Metrics:  recorder,
		Now:      time.Now,
		Log:      logger,
	}

	a := agent.New(agent.Agent{
		Provider: provider,
		Defense: defense.Scheduler{
			Detector: detector,
			Planner: escape.Planner{
				Engine: engine,
				Config: escape.Config{
					SafetyMargin:     cfg.SafetyMargin,
					DeepSpaceHolding: cfg.DeepSpaceHolding,
				},
			},
			Sink:     sink,
			Notifier: notifier,
			Metrics:  recorder,
			Config: defense.Config{
				MinActLead:      cfg.MinActLead,
				MaxActLead:      cfg.MaxActLead,
				TryRecall:       cfg.TryRecall,
				MaxReturnFlight: cfg.MaxReturnFlight,
			},
			Now:  time.Now,
			Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
			Log:  logger,
		},
		Expeditions: expeditions,
		Harvester: harvest.Harvester{
			Engine:      engine,
			Scanner:     scanner,
			Sink:        sink,
			Expeditions: expeditions,
			Notifier:    notifier,
			Metrics:     recorder,
			Config: harvest.Config{
				Enabled:   cfg.HarvestEnabled,
				Speed:     cfg.HarvestSpeed,
				MinDebris: cfg.HarvestMinDebris,
			},
			Now: time.Now,
			Log: logger,
		},
		Notifier: notifier,
		Metrics:  recorder,
		Settings: agent.Settings{
			SleepMin: cfg.SleepMin,
			SleepMax: cfg.SleepMax,
		},
		Now:  time.Now,
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		Log:  logger,
	})

	h := httpadapter.Handler{
		Agent:         a,
		Expeditions:   expeditionRepo,
		Notifications: notificationRepo,
		KPI:           recorder,
	}
	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)
	go s.Spin()
	logger.Info("ops api listening", "addr", cfg.HTTPAddr, "commander", cfg.Commander)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("agent stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("agent shut down")
}

func mustBuildRepos(cfg config.Settings, logger *slog.Logger) (ports.ExpeditionRepository, ports.NotificationRepository) {
	dsn := strings.TrimSpace(cfg.DatabaseDSN)
	if dsn == "" {
		logger.Warn("FLEETWARDEN_DB_DSN unset, expedition catalog and notifications are in-memory only")
		store := memrepo.NewStore()
		return store, store
	}
	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if err := gormrepo.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	return gormrepo.NewExpeditionRepo(db), gormrepo.NewNotificationRepo(db)
}

func buildLogger(cfg config.Settings) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// demoSnapshot is a quiet empire with one planet and moon so the loop has
// something to poll when no game adapter is configured.
func demoSnapshot() galaxy.Snapshot {
	home := galaxy.Coordinate{Galaxy: 1, System: 120, Position: 8, Type: galaxy.TypePlanet}
	moon := home.WithType(galaxy.TypeMoon)
	return galaxy.Snapshot{
		TakenAt: time.Now(),
		Bodies: []galaxy.Body{
			{
				Coords:    home,
				Name:      "Homeworld",
				Resources: galaxy.Resources{Metal: 500000, Crystal: 300000, Deuterium: 120000},
				Stationed: galaxy.FleetComposition{
					galaxy.SmallCargo: 40,
					galaxy.LargeCargo: 12,
					galaxy.Pathfinder: 8,
				},
			},
			{
				Coords:    moon,
				Name:      "Homeworld Moon",
				Resources: galaxy.Resources{Deuterium: 20000},
			},
		},
		FreeFleetSlots:     10,
		FreeExpeditionSlot: 2,
		Discoverer:         true,
	}
}
