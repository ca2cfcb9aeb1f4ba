package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/suppliers"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

var buildAll bool

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <supplier>",
	Short: "Build the canonical product XML for a supplier",
	Long: `Read a supplier's feeds from the input directory, resolve prices, stock and
markings, group variants under their parent product and write the canonical XML
file plus its .meta.json sidecar to the output directory.

Use --all to build every supplier; suppliers run concurrently up to
pipeline.parallel_suppliers at a time.`,
	Example: `  wholesale build anda
  wholesale build --all
  WHOLESALE_PATHS_INPUT_DIR=/srv/feeds wholesale build axpol`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&buildAll, "all", false, "Build all suppliers")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var profiles []suppliers.Profile
	if buildAll {
		for _, id := range suppliers.DefaultRegistry.List() {
			p, err := suppliers.DefaultRegistry.Get(id)
			if err != nil {
				return err
			}
			profiles = append(profiles, p)
		}
		logger.Info().Msgf("Building all %d suppliers", len(profiles))
	} else {
		if len(args) == 0 {
			return fmt.Errorf("either specify <supplier> or use --all flag")
		}
		p, err := suppliers.DefaultRegistry.Get(suppliers.SupplierID(args[0]))
		if err != nil {
			return fmt.Errorf("%w\nValid suppliers: %s", err, strings.Join(validSuppliers(), ", "))
		}
		profiles = []suppliers.Profile{p}
	}

	runner, _, cleanup, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := runner.RunAll(ctx, profiles)
	displayBuildResults(profiles, results)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r == nil || !r.Success {
			return fmt.Errorf("some builds failed")
		}
	}
	return nil
}

func displayBuildResults(profiles []suppliers.Profile, results []*types.RunResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SUPPLIER\tSTATUS\tRUN ID\tPRODUCTS\tSIMPLE\tVARIABLE\tVARIATIONS\tSKIPPED\tMESSAGE")
	fmt.Fprintln(w, "--------\t------\t------\t--------\t------\t--------\t----------\t-------\t-------")

	for i, p := range profiles {
		var r *types.RunResult
		if i < len(results) {
			r = results[i]
		}
		if r == nil {
			fmt.Fprintf(w, "%s\tNOT RUN\t-\t-\t-\t-\t-\t-\t-\n", p.ID)
			continue
		}
		status := "SUCCESS"
		if !r.Success {
			status = "FAILED"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Supplier, status, r.RunID,
			r.Counts.Products, r.Counts.Simple, r.Counts.Variable, r.Counts.Variations,
			r.Errors.Count, r.Message)
	}
	w.Flush()
}

func validSuppliers() []string {
	ids := suppliers.DefaultRegistry.List()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
