package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greenscanner/backend/internal/domain"
	"github.com/greenscanner/backend/internal/infrastructure/estimator"
)

var (
	imagePath  string
	jsonOutput bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [query]",
	Short: "Resolve one product and print the result",
	Long: `Runs a single lookup and prints the narrative.

Example:
  greenscanner lookup "Barilla Spaghetti"
  greenscanner lookup --image ./photo.jpg --json`,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&imagePath, "image", "", "Path to a product photo")
	lookupCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the structured result as JSON")
}

func runLookup(cmd *cobra.Command, args []string) error {
	request := &domain.LookupRequest{ProductQuery: strings.Join(args, " ")}

	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		request.ImageBase64, err = estimator.EncodeDataURL(data)
		if err != nil {
			return fmt.Errorf("%s: %w", imagePath, err)
		}
	}

	service, err := buildService(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	result, err := service.Lookup(cmd.Context(), request)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err = fmt.Fprintln(out, result.Text)
	return err
}
