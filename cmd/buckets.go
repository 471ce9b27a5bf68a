package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bucketsJSON bool

// bucketsCmd lists the configured buckets.
var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List configured buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logg, reg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		type row struct {
			Qualifier string `json:"qualifier"`
			Bucket    string `json:"bucket"`
			Region    string `json:"region"`
			Primary   bool   `json:"primary"`
		}

		primary, _ := reg.Primary()
		rows := make([]row, 0, reg.Len())
		for _, q := range reg.Qualifiers() {
			svc, _ := reg.Lookup(q)
			rows = append(rows, row{Qualifier: q, Bucket: svc.Bucket(), Region: svc.Region(), Primary: svc == primary})
		}

		if bucketsJSON {
			return printJSON(cmd.OutOrStdout(), rows)
		}
		for _, r := range rows {
			marker := " "
			if r.Primary {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-20s %-30s %s\n", marker, r.Qualifier, r.Bucket, r.Region)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(bucketsCmd)
	bucketsCmd.Flags().BoolVar(&bucketsJSON, "json", false, "Output as JSON")
}
