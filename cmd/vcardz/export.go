// ABOUTME: Export command for backing up cards.
// ABOUTME: Supports vCard, JSON and YAML export formats.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/models"
	"github.com/harper/vcardz/internal/ui"
	"github.com/harper/vcardz/internal/vcf"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const exportAllLimit = 100000

type ExportData struct {
	ExportedAt time.Time          `json:"exported_at" yaml:"exported_at"`
	Version    string             `json:"version" yaml:"version"`
	Cards      []*models.CardData `json:"cards" yaml:"cards"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cards",
	Long:  `Export cards as a .vcf file, or as JSON or YAML that keeps IDs and timestamps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")
		cardPrefix, _ := cmd.Flags().GetString("card")

		var cards []*models.Card
		if cardPrefix != "" {
			card, err := db.GetCard(dbConn, cardPrefix)
			if err != nil {
				return fmt.Errorf("failed to get card: %w", err)
			}
			cards = append(cards, card)
		} else {
			all, err := db.ListCards(dbConn, nil, exportAllLimit)
			if err != nil {
				return fmt.Errorf("failed to list cards: %w", err)
			}
			cards = all
		}

		data, err := encodeExport(format, cards)
		if err != nil {
			return err
		}

		if outputPath == "" || outputPath == "-" {
			fmt.Print(string(data))
			return nil
		}

		if err := os.WriteFile(outputPath, data, 0644); err != nil { //nolint:gosec // Exported contacts are user-readable files
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Exported %d cards to %s", len(cards), outputPath)))
		return nil
	},
}

func encodeExport(format string, cards []*models.Card) ([]byte, error) {
	switch format {
	case "vcf":
		text, err := vcf.Marshal(cards...)
		if err != nil {
			return nil, fmt.Errorf("failed to encode vcf: %w", err)
		}
		return []byte(text), nil
	case "json", "yaml":
		export := ExportData{
			ExportedAt: time.Now(),
			Version:    "1.0",
			Cards:      make([]*models.CardData, 0, len(cards)),
		}
		for _, card := range cards {
			export.Cards = append(export.Cards, models.ToData(card))
		}
		if format == "yaml" {
			return yaml.Marshal(export)
		}
		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func init() {
	exportCmd.Flags().StringP("format", "f", "vcf", "export format (vcf|json|yaml)")
	exportCmd.Flags().StringP("output", "o", "", "output path")
	exportCmd.Flags().StringP("card", "c", "", "single card ID to export")
	rootCmd.AddCommand(exportCmd)
}
