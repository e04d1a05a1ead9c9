package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/garagehub/rc-intake/internal/common"
	"github.com/garagehub/rc-intake/internal/export"
	"github.com/garagehub/rc-intake/internal/pipeline"
	"github.com/garagehub/rc-intake/internal/recognize"
	"github.com/garagehub/rc-intake/internal/repository"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "rcctl",
		Short:         "RC intake utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScanCmd(logger), newExportCmd(logger))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newScanCmd(logger *slog.Logger) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Run one RC scan through the OCR pipeline and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.LoadConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			recognizer := recognize.NewTesseract(recognize.Config{
				Tesseract:     cfg.OCR.Tesseract,
				TesseractLang: cfg.OCR.TesseractLang,
				TessdataDir:   cfg.OCR.TessdataDir,
				PSM:           cfg.OCR.PSM,
				OEM:           cfg.OCR.OEM,
			}, logger)
			pipe := pipeline.New(pipeline.Config{
				RecognizeTimeout: cfg.OCR.RecognizeTimeout,
				Strict:           strict,
			}, recognizer, logger)

			progress := func(f float64) {
				fmt.Fprintf(os.Stderr, "\rrecognizing... %3.0f%%", f*100)
				if f >= 1 {
					fmt.Fprintln(os.Stderr)
				}
			}
			res, err := pipe.Process(cmd.Context(), data, progress)
			if err != nil && res.Text == "" {
				return err
			}
			if err != nil {
				// extraction failed but the raw text is still worth printing
				fmt.Fprintln(os.Stderr, "warning:", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "use the strict extraction engine")
	return cmd
}

func newExportCmd(logger *slog.Logger) *cobra.Command {
	var clientID, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a client's RC records to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID == "" {
				return fmt.Errorf("--client is required")
			}
			cfg, err := common.LoadConfig()
			if err != nil {
				return err
			}
			db, err := repository.Open(cmd.Context(), repository.Config{
				DSN:             cfg.Database.DSN,
				MaxOpenConns:    cfg.Database.MaxOpenConns,
				MaxIdleConns:    cfg.Database.MaxIdleConns,
				ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
				DialTimeout:     cfg.Database.DialTimeout,
			}, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			docs := repository.NewDocumentRepository(db, logger)
			data, err := export.NewService(docs, logger).ExportRecordsXLSX(cmd.Context(), clientID, cfg.Server.ExportSheet)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client id to export")
	cmd.Flags().StringVar(&out, "out", "rc-records.xlsx", "output file")
	return cmd
}
