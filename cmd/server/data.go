package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/database"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
)

var (
	exportOut    string
	exportFormat string
	importIn     string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		version, err := db.SchemaVersion(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("✅ Database migrated", zap.String("driver", db.Driver()), zap.Int("schema_version", version))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every plant, care log and location to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.db.Close()

		data, err := a.garden.Export(cmd.Context())
		if err != nil {
			return err
		}

		var w io.Writer = stdout
		if exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}

		if err := encodeExport(w, data, exportFormat); err != nil {
			return err
		}
		logger.Info("Export written",
			zap.String("out", exportOut),
			zap.Int("plants", len(data.Plants)),
			zap.Int("care_logs", len(data.CareLogs)))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace all data with the contents of an export file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importIn)
		if err != nil {
			return fmt.Errorf("opening %s: %w", importIn, err)
		}
		defer f.Close()

		data, err := decodeExport(f, formatFromPath(importIn))
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.db.Close()

		_, err = a.garden.Import(cmd.Context(), data)
		return err
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file, - for stdout")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json or yaml")
	importCmd.Flags().StringVarP(&importIn, "in", "i", "", "export file to import (.json, .yaml or .yml)")
	_ = importCmd.MarkFlagRequired("in")
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func encodeExport(w io.Writer, data *models.DataExport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q (want json or yaml)", format)
	}
}

func decodeExport(r io.Reader, format string) (*models.DataExport, error) {
	var data models.DataExport
	var err error
	if format == "yaml" {
		err = yaml.NewDecoder(r).Decode(&data)
	} else {
		err = json.NewDecoder(r).Decode(&data)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s export: %w", format, err)
	}
	return &data, nil
}
