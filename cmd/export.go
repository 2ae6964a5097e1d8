package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geodaten-labs/streetcrawl/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the collected dataset to XLSX or CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := st.Load(ctx)
		if err != nil {
			return err
		}
		if snap == nil {
			return eris.New("no crawl state found, nothing to export")
		}

		switch format {
		case "xlsx":
			if out == "" {
				out = "addresses.xlsx"
			}
			err = export.WriteXLSX(snap, out)
		case "csv":
			if out == "" {
				out = "addresses.csv"
			}
			err = export.WriteCSV(snap, out)
		default:
			return eris.Errorf("unknown format %q (valid: xlsx, csv)", format)
		}
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("format", format),
			zap.String("path", out),
			zap.Int("streets", len(snap.Streets)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "xlsx", "output format: xlsx or csv")
	exportCmd.Flags().String("out", "", "output path (default addresses.<format>)")
	rootCmd.AddCommand(exportCmd)
}
