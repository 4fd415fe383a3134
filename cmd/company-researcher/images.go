// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pdiddy/company-researcher/internal/research"
)

var imagesCmd = &cobra.Command{
	Use:   "images [company]",
	Short: "Find and describe images related to a company",
	Long: `Images searches for the company's own web pages, extracts the images
they carry, and describes each with the vision model. When no images turn
up on official pages, a logo-oriented search is tried instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runImages,
}

func init() {
	imagesCmd.Flags().Bool("json", false, "output the full result envelope as JSON")
	imagesCmd.Flags().Bool("show-log", false, "print the process log after the result")
	imagesCmd.Flags().String("log-file", "", "write the process log to a YAML file")

	rootCmd.AddCommand(imagesCmd)
}

func runImages(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	svc := research.NewService(cfg, modelClient(cfg.AI), nil)
	defer svc.Close()

	result := svc.GetImages(context.Background(), args[0])
	return printResult(cmd, result)
}
