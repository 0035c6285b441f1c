package boostmeshd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/boostmesh/boostmesh/coordinator/daemon"
)

var (
	logLevel        = "info"
	listenAddress   = ":12399"
	httpAddress     = ":7070"
	expectedWorkers = 1
	barrierMode     = false
)

var coordinatorCmd = []cobra.Command{
	{
		Use:   "start",
		Short: "Start coordinator",
		Long:  `Start coordinator.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := daemon.Config{
				LogLevel:        logLevel,
				ListenAddress:   listenAddress,
				HTTPAddress:     httpAddress,
				ExpectedWorkers: expectedWorkers,
				BarrierMode:     barrierMode,
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			if err := daemon.StartCoordinator(ctx, cancel, cfg); err != nil {
				cmd.PrintErrf("failed to start coordinator: %s", err.Error())
			}
			cancel()
		},
	},
}

func NewCoordinatorCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "coordinator [start]",
		Short: "Coordinator management",
		Long:  `Create coordinator for BoostMesh training sessions.`,
	}

	for i := range coordinatorCmd {
		coordinatorCmd[i].PersistentFlags().StringVar(
			&logLevel,
			"log-level",
			logLevel,
			"Log level",
		)
		coordinatorCmd[i].PersistentFlags().StringVar(
			&listenAddress,
			"listen-address",
			listenAddress,
			"Rendezvous TCP listen address",
		)
		coordinatorCmd[i].PersistentFlags().StringVar(
			&httpAddress,
			"http-address",
			httpAddress,
			"HTTP status API listen address",
		)
		coordinatorCmd[i].PersistentFlags().IntVar(
			&expectedWorkers,
			"expected-workers",
			expectedWorkers,
			"Number of worker announcements that complete the session",
		)
		coordinatorCmd[i].PersistentFlags().BoolVar(
			&barrierMode,
			"barrier-mode",
			barrierMode,
			"Hold the peer list until the finished signal arrives",
		)
		cmd.AddCommand(&coordinatorCmd[i])
	}

	return &cmd
}
