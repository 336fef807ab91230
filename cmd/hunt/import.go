package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/hunt/internal/config"
	"github.com/stwalsh4118/hunt/internal/importer"
	"github.com/stwalsh4118/hunt/internal/logger"
)

func newImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace all stored accidents with the rows of a CSV or XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if file == "" {
				file = cfg.Import.File
			}

			log := logger.NewWithWriter(cfg.Server.Env, cmd.ErrOrStderr())
			return runImport(cmd.Context(), cfg, file, log, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "accident file to import (default $IMPORT_FILE)")

	return cmd
}

func runImport(ctx context.Context, cfg *config.Config, path string, log *logger.Logger, out io.Writer) error {
	be, err := openBackend(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to open accident store: %w", err)
	}
	defer be.close()

	imp := importer.New(be.repo, log, nil)
	n, err := imp.Import(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported %d accidents from %s\n", n, path)
	return nil
}
