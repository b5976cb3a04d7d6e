// ABOUTME: Import command for loading cards from files.
// ABOUTME: Supports .vcf files, directories of them, and JSON/YAML backups.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/ui"
	"github.com/harper/vcardz/internal/vcf"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import cards",
	Long: `Import cards from a .vcf file, a directory of .vcf files, or a JSON or
YAML backup made with 'vcardz export'. Backups keep card IDs, so importing
the same backup twice updates cards instead of duplicating them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat path: %w", err)
		}

		var count int
		switch ext := strings.ToLower(filepath.Ext(path)); {
		case info.IsDir():
			count, err = importVCFDir(path)
		case ext == ".json" || ext == ".yaml" || ext == ".yml":
			count, err = importBackup(path, ext)
		default:
			count, err = importVCFFile(path)
		}
		if err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Imported %d cards", count)))
		return nil
	},
}

func importVCFFile(path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // User-specified file path is expected CLI behavior
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	r := vcf.NewReader(f)
	r.OnSkip = func(e *vcf.LineError) {
		logger.Warn("skipped line", "file", path, "line", e.Line, "err", e.Err, "text", e.Text)
	}

	count := 0
	for {
		card, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("%s: %w", path, err)
		}
		if err := db.CreateCard(dbConn, card); err != nil {
			logger.Warn("failed to import card", "name", card.DisplayName(), "err", err)
			continue
		}
		count++
	}
	return count, nil
}

func importVCFDir(dir string) (int, error) {
	count := 0

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".vcf") {
			return nil
		}

		n, err := importVCFFile(path)
		count += n
		if err != nil {
			logger.Warn("failed to import file", "path", path, "err", err)
		}
		return nil
	})

	return count, err
}

func importBackup(path, ext string) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified file path is expected CLI behavior
	if err != nil {
		return 0, err
	}

	export, err := decodeBackup(data, ext)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, cd := range export.Cards {
		card, err := cd.ToModel()
		if err != nil {
			logger.Warn("failed to decode card", "id", cd.ID, "err", err)
			continue
		}
		if err := db.UpsertCard(dbConn, card); err != nil {
			logger.Warn("failed to import card", "id", cd.ID, "err", err)
			continue
		}
		count++
	}
	return count, nil
}

// decodeBackup reads an export made with encodeExport. ext selects JSON
// (".json"); anything else is parsed as YAML.
func decodeBackup(data []byte, ext string) (*ExportData, error) {
	var export ExportData
	var err error
	if ext == ".json" {
		err = json.Unmarshal(data, &export)
	} else {
		err = yaml.Unmarshal(data, &export)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	return &export, nil
}

func init() {
	rootCmd.AddCommand(importCmd)
}
