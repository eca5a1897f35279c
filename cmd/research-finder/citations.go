// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-finder/internal/citations"
	"github.com/pdiddy/research-finder/pkg/types"
)

var citationsCmd = &cobra.Command{
	Use:   "citations [paper-id...]",
	Short: "Look up citation counts for paper ids directly",
	Long: `Citations resolves citation counts for one or more paper ids without
running a query. Ids may be OpenCitations Meta ids ("meta:br/..."), prefixed
DOIs ("doi:10.1234/abc"), or bare DOIs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCitations,
}

func init() {
	citationsCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(citationsCmd)
}

func runCitations(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	papers := make([]types.PaperRecord, len(args))
	for i, id := range args {
		papers[i] = types.PaperRecord{ID: id}
	}

	enriched := citations.NewResolver(cfg.Citations, log).Resolve(context.Background(), papers)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		records := make([]types.CitationRecord, len(enriched))
		for i, p := range enriched {
			records[i] = p.Citations
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, p := range enriched {
		c := p.Citations
		if c.Source == types.SourceUnavailable {
			fmt.Fprintf(os.Stdout, "%s: unavailable\n", c.PaperID)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s: %d citations (%s)\n", c.PaperID, c.Count, c.Source)
	}
	return nil
}
