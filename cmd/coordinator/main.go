package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/0x6flab/namegenerator"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/boostmesh/boostmesh/coordinator/daemon"
)

const pathEnv = ".env"

type envConfig struct {
	LogLevel        string `env:"COORDINATOR_LOG_LEVEL"        envDefault:"info"`
	InstanceID      string `env:"COORDINATOR_INSTANCE_ID"`
	SessionName     string `env:"COORDINATOR_SESSION_NAME"`
	ListenAddress   string `env:"COORDINATOR_LISTEN_ADDRESS"   envDefault:":12399"`
	HTTPAddress     string `env:"COORDINATOR_HTTP_ADDRESS"     envDefault:":7070"`
	ExpectedWorkers int    `env:"COORDINATOR_EXPECTED_WORKERS,required"`
	BarrierMode     bool   `env:"COORDINATOR_BARRIER_MODE"     envDefault:"false"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if cfg.SessionName == "" {
		cfg.SessionName = namegenerator.NewGenerator().Generate()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()

	if err := daemon.StartCoordinator(ctx, cancel, daemon.Config{
		LogLevel:        cfg.LogLevel,
		InstanceID:      cfg.InstanceID,
		SessionName:     cfg.SessionName,
		ListenAddress:   cfg.ListenAddress,
		HTTPAddress:     cfg.HTTPAddress,
		ExpectedWorkers: cfg.ExpectedWorkers,
		BarrierMode:     cfg.BarrierMode,
	}); err != nil {
		log.Fatal(err)
	}
}
