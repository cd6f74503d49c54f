package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"geolink/internal/api"
	"geolink/internal/config"
)

func newUploadCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and print its share links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Upload(cmd.Context(), filepath.Base(args[0]), f)
				if err != nil {
					return err
				}

				if out.structured() {
					return writeJSON(resp)
				}

				base := shareBaseURL(cfg)
				_ = writePlain("image_id: %s\n", resp.ImageID)
				_ = writePlain("share: %s/i/%s\n", base, resp.ImageID)
				_ = writePlain("map: %s/map/%s\n", base, resp.ImageID)
				return nil
			})
		},
	}
}

func shareBaseURL(cfg *config.Config) string {
	if base := cfg.PingBaseURL(); base != "" {
		return base
	}
	return strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
}

