// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var convertCmd = &cobra.Command{
	Use:   "convert [pdfs...]",
	Short: "Extract and render in one step",
	Long: `Convert runs extract followed by render. Rendering runs only when
extraction succeeded for every PDF.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if err := applyExtractFlags(cmd, &cfg); err != nil {
			return err
		}
		if err := applyRenderFlags(cmd, &cfg); err != nil {
			return err
		}
		if err := runExtract(cfg.Extraction, args, os.Stdout); err != nil {
			return err
		}
		return runRender(cmd.Context(), cfg, os.Stdout)
	},
}

func init() {
	addExtractFlags(convertCmd)
	addRenderFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}
