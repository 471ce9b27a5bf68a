package cmd

import (
	"fmt"

	"bucket-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	integrityJSON        bool
	integrityConcurrency int
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity [qualifier]",
	Short: "Check that configured buckets are reachable",
	Long:  `Checks that every configured bucket (or only the given one) exists and can be listed.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logg, reg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		svc := integrity.NewService(reg, logg)
		svc.SetConcurrency(integrityConcurrency)

		var report integrity.Report
		if len(args) == 1 {
			b, err := svc.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			report = integrity.Report{Status: b.Status, Buckets: []integrity.BucketReport{b}}
		} else {
			logg.Info("Checking buckets...", zap.Int("count", reg.Len()))
			report, err = svc.CheckAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("integrity check aborted: %w", err)
			}
		}

		if integrityJSON {
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
		} else {
			for _, b := range report.Buckets {
				fields := []zap.Field{
					zap.String("qualifier", b.Qualifier),
					zap.String("bucket", b.Bucket),
					zap.Int64("latency_ms", b.LatencyMs),
				}
				if b.Status == integrity.StatusOK {
					logg.Info("Bucket is healthy", fields...)
				} else {
					logg.Warn("Bucket is unhealthy", append(fields, zap.String("status", b.Status), zap.String("error", b.Error))...)
				}
			}
		}

		if report.Status != integrity.StatusOK {
			return fmt.Errorf("integrity check reported status %s", report.Status)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.Flags().BoolVar(&integrityJSON, "json", false, "Output the report as JSON")
	integrityCmd.Flags().IntVar(&integrityConcurrency, "concurrency", integrity.DefaultConcurrency, "Buckets checked in parallel")
}
