package main

import (
	"github.com/spf13/cobra"

	"geolink/internal/api"
	"geolink/internal/config"
)

func newInfoCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show ledger and image store info",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}

				if out.structured() {
					return writeJSON(resp)
				}

				_ = writePlain("db_path: %s\n", cfg.DBPath)
				_ = writePlain("image_dir: %s\n", resp.ImageDir)
				_ = writePlain("schema_version: %d\n", resp.SchemaVersion)
				_ = writePlain("total_reports: %d\n", resp.TotalReports)
				_ = writePlain("total_images: %d\n", resp.TotalImages)
				return nil
			})
		},
	}
}
