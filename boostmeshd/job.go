package boostmeshd

import (
	"github.com/spf13/cobra"

	boostmesh "github.com/boostmesh/boostmesh"
)

var jobCmd = []cobra.Command{
	{
		Use:   "validate <config-file>",
		Short: "Validate job config",
		Long:  `Validate a training job configuration file.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := boostmesh.LoadConfig(args[0])
			if err != nil {
				cmd.PrintErrf("invalid job config: %s\n", err.Error())

				return
			}
			if _, err := cfg.TrainParams(); err != nil {
				cmd.PrintErrf("invalid job config: %s\n", err.Error())

				return
			}
			cmd.Printf("job config %s is valid\n", args[0])
		},
	},
}

func NewJobCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "job [validate]",
		Short: "Job management",
		Long:  `Inspect and validate BoostMesh training jobs.`,
	}

	for i := range jobCmd {
		cmd.AddCommand(&jobCmd[i])
	}

	return &cmd
}
