// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-finder/internal/llm"
	"github.com/pdiddy/research-finder/internal/pipeline"
	"github.com/pdiddy/research-finder/internal/store"
	"github.com/pdiddy/research-finder/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a free-text research question against the paper index",
	Long: `Query decomposes a research question into topic, year, and citation
constraints, runs it against the local paper index, enriches the results
with citation counts, and prints them ranked. Questions that ask for a
summary or analysis also get one.

Examples:
  research-finder query "find papers about machine learning published after 2020"
  research-finder query "most cited neural network papers" --limit 10 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", 0, "number of results (overrides the count in the question)")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	queryCmd.Flags().Bool("no-analysis", false, "skip analysis even when the question asks for one")
	queryCmd.Flags().String("save", "", "write the full result to a file (.json or .yaml)")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if noAnalysis, _ := cmd.Flags().GetBool("no-analysis"); noAnalysis {
		cfg.Query.EnableAnalysis = false
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var client llm.Client
	if cfg.AI.APIKey != "" {
		client = llm.NewAnthropic(cfg.AI)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	raw := types.RawQuery{
		Text:        strings.Join(args, " "),
		ResultCount: limit,
	}

	result, err := pipeline.New(cfg, st, client, log).Run(context.Background(), raw)
	if err != nil {
		return err
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := saveResult(result, savePath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved result to %s\n", savePath)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(result, jsonOutput)
}

// saveResult writes the full result to path; the extension picks the
// encoding, JSON unless it is .yaml or .yml.
func saveResult(result *pipeline.Result, path string) error {
	var (
		data []byte
		err  error
	)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(result)
	default:
		data, err = json.MarshalIndent(result, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

func formatQueryOutput(result *pipeline.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.NoMatches {
		fmt.Println("No papers matched.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-50s  %-25s  %-10s  %s\n",
		"Rank", "Title", "Author", "Published", "Citations")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 105))

	for i, p := range result.Papers {
		title := p.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		author := p.Author
		if len(author) > 25 {
			author = author[:22] + "..."
		}
		citations := "unknown"
		if p.Citations.Source != types.SourceUnavailable {
			citations = fmt.Sprintf("%d", p.Citations.Count)
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-50s  %-25s  %-10s  %s\n",
			i+1, title, author, formatDate(p.PubDate), citations)
	}
	fmt.Fprintf(os.Stdout, "\n%d papers\n", len(result.Papers))

	if result.Analysis != nil {
		fmt.Fprintf(os.Stdout, "\n%s\n", result.Analysis.Headline)
		for _, s := range result.Analysis.Sections {
			fmt.Fprintf(os.Stdout, "\n%s\n%s\n", s.Title, s.Body)
		}
	}

	if result.Degraded {
		fmt.Fprintf(os.Stderr, "\nNote: %s\n", strings.Join(result.DegradedReasons, "; "))
	}
	return nil
}
