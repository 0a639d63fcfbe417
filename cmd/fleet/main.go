package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"brothbots.ai/internal/backend"
	"brothbots.ai/internal/config"
	"brothbots.ai/internal/credstore"
	"brothbots.ai/internal/fleet"
	"brothbots.ai/internal/llm"
	"brothbots.ai/internal/npc"
	"brothbots.ai/internal/transcript"
)

func main() {
	var (
		cfgPath    = flag.String("config", "./configs/fleet.yaml", "fleet config path")
		backendURL = flag.String("backend", "", "backend ws url (overrides config)")
		rosterPath = flag.String("roster", "", "roster path (overrides config)")
		fleetSize  = flag.Int("fleet_size", 0, "number of agents to boot (overrides config)")
		dataDir    = flag.String("data", "", "runtime data directory (overrides config)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[fleet] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if strings.TrimSpace(*backendURL) != "" {
		cfg.BackendURL = *backendURL
	}
	if strings.TrimSpace(*rosterPath) != "" {
		cfg.RosterPath = *rosterPath
	}
	if *fleetSize > 0 {
		cfg.FleetSize = *fleetSize
	}
	if strings.TrimSpace(*dataDir) != "" {
		cfg.DataDir = *dataDir
	}

	roster, err := npc.LoadRoster(cfg.RosterPath)
	if err != nil {
		logger.Fatalf("load roster: %v", err)
	}

	creds, err := credstore.Open(cfg.DataDir)
	if err != nil {
		logger.Fatalf("open credential store: %v", err)
	}
	defer creds.Close()

	transcripts := transcript.NewWriter(cfg.DataDir)
	defer transcripts.Close()

	var client llm.Client
	if cfg.PlanningEnabled() {
		client = &llm.HTTPClient{
			Endpoint: cfg.LLMEndpoint,
			APIKey:   cfg.LLMAPIKey,
		}
	} else {
		logger.Printf("BB_LLM_API_KEY not set; planning disabled, agents will idle")
	}

	planner := &npc.Planner{
		Client:      client,
		Model:       cfg.LLMModel,
		MaxRetries:  cfg.MaxPlannerRetries,
		Logger:      log.New(os.Stdout, "[planner] ", log.LstdFlags|log.Lmicroseconds),
		Transcripts: transcripts,
	}

	mgr := fleet.NewManager(fleet.Config{
		Module:          cfg.Module,
		Roster:          roster,
		FleetSize:       cfg.FleetSize,
		PlannerInterval: time.Duration(cfg.PlannerIntervalMs) * time.Millisecond,
		ReactiveHz:      cfg.ReactiveHz,
	}, &backend.Dialer{URL: cfg.BackendURL, Logger: logger}, creds, planner, logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	bootDone := make(chan struct{})
	go func() {
		defer close(bootDone)
		mgr.BootAll(context.Background())
	}()

	select {
	case <-bootDone:
		names := mgr.Agents()
		logger.Printf("boot complete: %d/%d agents connected: %s",
			len(names), cfg.FleetSize, strings.Join(names, ", "))
		mgr.StartAll()
	case sig := <-stop:
		logger.Printf("signal %v during boot, draining", sig)
		mgr.Shutdown()
		return
	}

	sig := <-stop
	logger.Printf("signal %v, draining fleet", sig)
	mgr.Shutdown()
}
