package main

import (
	"github.com/spf13/cobra"

	"geolink/internal/api"
	"geolink/internal/config"
)

func newLastCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "last <image-id>",
		Short: "Show the most recent location report for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				report, err := client.Latest(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(report)
				}
				return writeReportDetail(report)
			})
		},
	}
}

func newLogsCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logs <image-id>",
		Short: "List all location reports for an image, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				reports, err := client.History(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(reports)
				}
				return writeReportList(reports)
			})
		},
	}
}
