package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/boostmesh/boostmesh/boostmeshd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "boostmeshd",
		Short: "BoostMesh Daemon",
		Long:  `BoostMesh Daemon is a daemon that manages the lifecycle of BoostMesh components.`,
	}

	rootCmd.AddCommand(boostmeshd.NewCoordinatorCmd())
	rootCmd.AddCommand(boostmeshd.NewJobCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
