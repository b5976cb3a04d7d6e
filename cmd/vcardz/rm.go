// ABOUTME: Remove command for deleting cards.
// ABOUTME: Includes confirmation prompt before deletion.

package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/ui"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id-prefix>",
	Short: "Remove a card",
	Long:  `Delete a card and its indexed properties.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		card, err := db.GetCard(dbConn, args[0])
		if err != nil {
			return fmt.Errorf("failed to get card: %w", err)
		}

		if !force {
			prompt := fmt.Sprintf("Delete card %q (%s)? [y/N] ", card.DisplayName(), card.ID.String()[:6])
			if !confirm(prompt, "y", "yes") {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := db.DeleteCard(dbConn, card.ID); err != nil {
			return fmt.Errorf("failed to delete card: %w", err)
		}
		deleteRemote(card.ID)

		fmt.Println(ui.Success(fmt.Sprintf("Deleted card %s", card.ID.String()[:6])))
		return nil
	},
}

// deleteRemote mirrors a local delete to charm when this device is linked
// with auto-sync on. Failures only warn; the tombstone left by db.DeleteCard
// lets the next sync push retry.
func deleteRemote(id uuid.UUID) {
	client, err := newCharmClient()
	if err != nil {
		logger.Debug("charm client unavailable", "err", err)
		return
	}
	if cfg := client.Config(); !client.Linked() || cfg == nil || !cfg.AutoSync {
		return
	}
	if err := client.DeleteCards([]uuid.UUID{id}); err != nil {
		logger.Warn("failed to delete card from charm", "id", id, "err", err)
	}
}

func init() {
	rmCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	rootCmd.AddCommand(rmCmd)
}
