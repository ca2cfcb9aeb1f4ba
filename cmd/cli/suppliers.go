package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/suppliers"
)

var suppliersOutput string

// suppliersCmd represents the suppliers command
var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "List configured suppliers and their feeds",
	Example: `  wholesale suppliers
  wholesale suppliers --output json`,
	Args: cobra.NoArgs,
	RunE: runSuppliers,
}

func init() {
	rootCmd.AddCommand(suppliersCmd)
	suppliersCmd.Flags().StringVar(&suppliersOutput, "output", "table", "Output format: table or json")
}

func runSuppliers(cmd *cobra.Command, args []string) error {
	var profiles []suppliers.Profile
	for _, id := range suppliers.DefaultRegistry.List() {
		p, err := suppliers.DefaultRegistry.Get(id)
		if err != nil {
			return err
		}
		profiles = append(profiles, p)
	}

	switch strings.ToLower(suppliersOutput) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(profiles)
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDIR\tOUTPUT\tFEEDS")
		fmt.Fprintln(w, "--\t----\t---\t------\t-----")
		for _, p := range profiles {
			feeds := make([]string, 0, len(p.Feeds))
			for _, f := range p.Feeds {
				name := fmt.Sprintf("%s=%s", f.Kind, f.Path)
				if f.Required {
					name += "*"
				}
				feeds = append(feeds, name)
			}
			if p.PrintingPrices != "" {
				feeds = append(feeds, "printing="+p.PrintingPrices)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Dir, p.OutputFile, strings.Join(feeds, ", "))
		}
		w.Flush()
		fmt.Println("\n* required feed")
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", suppliersOutput)
	}
}
