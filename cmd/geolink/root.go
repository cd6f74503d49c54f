package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"geolink/internal/config"
	"geolink/internal/format"
)

type outputFlags struct {
	json bool
	yaml bool
}

// structured reports whether output should go through a formatter.
func (o *outputFlags) structured() bool {
	return o != nil && (o.json || o.yaml)
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		out      outputFlags
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "geolink",
		Short:         "Geolink serves shared images and records the locations visitors choose to share",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if out.json && out.yaml {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}
			if out.yaml {
				outputFormatter = format.YAMLFormatter{}
			}

			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&out.json, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&out.yaml, "yaml", false, "output YAML")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newUploadCmd(cfg, &out),
		newLastCmd(cfg, &out),
		newLogsCmd(cfg, &out),
		newInfoCmd(cfg, &out),
		newConfigCmd(cfg),
	)

	return cmd
}
