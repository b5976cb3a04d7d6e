// ABOUTME: Show command for displaying a single card.
// ABOUTME: Renders NOTE values as markdown with glamour.

package main

import (
	"fmt"

	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/models"
	"github.com/harper/vcardz/internal/ui"
	"github.com/harper/vcardz/internal/vcf"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show a card",
	Long:  `Display a card's properties. Use --raw to print it as vCard text.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		card, err := db.GetCard(dbConn, args[0])
		if err != nil {
			return fmt.Errorf("failed to get card: %w", err)
		}

		if raw {
			text, err := vcf.Marshal(card)
			if err != nil {
				return fmt.Errorf("failed to render card: %w", err)
			}
			fmt.Print(text)
			return nil
		}

		fmt.Print(ui.FormatCardHeader(card))
		fmt.Print(ui.FormatProperties(card))

		for _, note := range card.Properties("NOTE") {
			content, _ := ui.FormatNoteContent(models.Unescape(note.Value()))
			fmt.Print(content)
		}

		return nil
	},
}

func init() {
	showCmd.Flags().Bool("raw", false, "print as vCard text")
	rootCmd.AddCommand(showCmd)
}
