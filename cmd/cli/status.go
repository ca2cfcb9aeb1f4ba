package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/pipeline"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/storage"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

var statusOutput string

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [supplier]",
	Short: "Show the last recorded run of one or all suppliers",
	Example: `  wholesale status
  wholesale status anda --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusOutput, "output", "table", "Output format: table or json")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	var results []*types.RunResult
	if len(args) == 1 {
		r, err := pipeline.LastResult(ctx, store, args[0])
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Printf("No runs recorded for supplier: %s\n", args[0])
			return nil
		}
		if err != nil {
			return err
		}
		results = []*types.RunResult{r}
	} else {
		results, err = pipeline.LastResults(ctx, store)
		if err != nil {
			return err
		}
	}

	switch strings.ToLower(statusOutput) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "table":
		outputStatusTable(results)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", statusOutput)
	}
}

func outputStatusTable(results []*types.RunResult) {
	if len(results) == 0 {
		fmt.Println("No runs recorded")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SUPPLIER\tSTATUS\tRUN ID\tSTARTED\tDURATION\tPRODUCTS\tERRORS\tOUTPUT")
	fmt.Fprintln(w, "--------\t------\t------\t-------\t--------\t--------\t------\t------")
	for _, r := range results {
		duration := "-"
		if r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		output := r.OutputPath
		if output == "" {
			output = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Supplier, r.Status, r.RunID,
			r.StartedAt.Format(time.RFC3339), duration,
			r.Counts.Products, r.Errors.Count, output)
	}
	w.Flush()
}
