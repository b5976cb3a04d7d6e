// ABOUTME: Sync subcommand for Charm cloud integration.
// ABOUTME: Provides status, link, unlink, push, pull, show, reset and wipe.

package main

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/harper/vcardz/internal/charm"
	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/models"
	"github.com/harper/vcardz/internal/ui"
	"github.com/spf13/cobra"
)

var skipDB = map[string]string{skipDBAnnotation: "true"}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Manage Charm cloud sync",
	Long: `Sync your cards to the Charm cloud.

Charm uses SSH key authentication - no passwords needed.

Commands:
  status  - Show sync configuration and connection status
  link    - Connect this device to Charm cloud
  unlink  - Disconnect from Charm cloud
  push    - Upload local cards to Charm
  pull    - Merge cards from Charm into the local database
  show    - Show the Charm copy of a card
  reset   - Reset local sync data (keeps cloud data)
  wipe    - Delete all synced data and start fresh

Examples:
  vcardz sync status
  vcardz sync link --host charm.example.com
  vcardz sync push
  vcardz sync pull`,
}

var syncStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show sync status",
	Long:        `Display Charm sync configuration and connection status.`,
	Annotations: skipDB,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := charm.LoadConfig()
		if err != nil {
			cfg = charm.DefaultConfig()
		}

		fmt.Println("Charm Sync Status")
		fmt.Println(strings.Repeat("-", 40))

		fmt.Printf("Config:    %s\n", charm.ConfigPath())
		if cfg.CharmHost != "" {
			fmt.Printf("Host:      %s\n", cfg.CharmHost)
		} else {
			fmt.Printf("Host:      %s\n", color.New(color.Faint).Sprint("(default: cloud.charm.sh)"))
		}

		if cfg.AutoSync {
			fmt.Printf("Auto-sync: %s\n", color.GreenString("enabled"))
		} else {
			fmt.Printf("Auto-sync: %s\n", color.YellowString("disabled"))
		}

		client, err := newCharmClient()
		if err != nil {
			fmt.Println()
			fmt.Printf("Status:    %s\n", color.RedString("client not initialized"))
			return nil
		}

		if last := client.LastSyncTime(); !last.IsZero() {
			fmt.Printf("Last sync: %s\n", last.Format("2006-01-02 15:04"))
		}

		user, err := client.User()
		if err == nil && user != nil {
			fmt.Println()
			fmt.Printf("User ID:   %s\n", user.CharmID)
			fmt.Printf("Name:      %s\n", valueOrNone(user.Name))
			fmt.Printf("Status:    %s\n", color.GreenString("connected"))
		} else {
			fmt.Println()
			fmt.Printf("Status:    %s\n", color.YellowString("not linked"))
			fmt.Println("\nRun 'vcardz sync link' to connect to Charm cloud.")
		}

		return nil
	},
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Connect to Charm cloud",
	Long: `Link this device to Charm cloud for sync.

Charm uses SSH key authentication. On first link, you'll see
a code to verify on another device, or you can create a new account.`,
	Annotations: skipDB,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")

		cfg, err := charm.LoadConfig()
		if err != nil {
			cfg = charm.DefaultConfig()
		}
		if host != "" {
			cfg.CharmHost = host
		}

		// Save before linking so the client picks up a changed host.
		if err := charm.SaveConfig(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		client, err := newCharmClient()
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}

		if err := client.Link(); err != nil {
			return fmt.Errorf("link failed: %w", err)
		}

		user, err := client.User()
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		color.Green("\n✓ Linked to Charm cloud")
		fmt.Printf("  User ID: %s\n", user.CharmID)
		if user.Name != "" {
			fmt.Printf("  Name:    %s\n", user.Name)
		}
		fmt.Println("\nRun 'vcardz sync push' to upload your cards.")

		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm cloud",
	Long: `Unlink this device from Charm cloud.

This clears the local sync replica but keeps the card database.
You can re-link anytime with 'vcardz sync link'.`,
	Annotations: skipDB,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm("This will disconnect this device from Charm cloud.\nYour local cards will be preserved.\n\nType 'unlink' to confirm: ", "unlink") {
			fmt.Println("Aborted.")
			return nil
		}

		client, err := newCharmClient()
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}
		if err := client.Unlink(); err != nil {
			return fmt.Errorf("unlink failed: %w", err)
		}

		color.Green("\n✓ Unlinked from Charm cloud")
		fmt.Println("Run 'vcardz sync link' to reconnect.")

		return nil
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload local cards to Charm",
	Long: `Write every card in the local database to the Charm KV store and
remove the Charm copies of cards deleted locally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cards, err := db.ListCards(dbConn, nil, exportAllLimit)
		if err != nil {
			return fmt.Errorf("failed to list cards: %w", err)
		}
		tombstones, err := db.ListTombstones(dbConn)
		if err != nil {
			return fmt.Errorf("failed to list deleted cards: %w", err)
		}

		client, err := newCharmClient()
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}

		if err := client.PutCards(cards); err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		if err := client.DeleteCards(tombstoneIDs(tombstones)); err != nil {
			return fmt.Errorf("push deletes failed: %w", err)
		}

		color.Green("✓ Pushed %d cards, removed %d", len(cards), len(tombstones))
		return nil
	},
}

func tombstoneIDs(tombstones []*db.Tombstone) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(tombstones))
	for _, ts := range tombstones {
		ids = append(ids, ts.CardID)
	}
	return ids
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Merge cards from Charm",
	Long: `Sync the Charm KV store and merge its cards into the local database.
A remote card replaces the local one only when it was updated more recently.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newCharmClient()
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}

		if err := client.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		remote, err := client.ListCards()
		if err != nil {
			return fmt.Errorf("failed to list remote cards: %w", err)
		}

		merged, err := mergeRemote(dbConn, remote)
		if err != nil {
			return err
		}

		color.Green("✓ Pulled %d of %d cards", merged, len(remote))
		return nil
	},
}

// mergeRemote stores each remote card that is missing locally or newer than
// the local copy. A card deleted here stays deleted unless the remote copy
// was edited after the delete. It returns how many cards were written.
func mergeRemote(conn *sql.DB, remote []*models.Card) (int, error) {
	merged := 0
	for _, card := range remote {
		local, err := db.GetCardByID(conn, card.ID)
		switch {
		case errors.Is(err, db.ErrCardNotFound):
			ts, err := db.GetTombstone(conn, card.ID)
			if err != nil {
				return merged, fmt.Errorf("failed to read tombstone %s: %w", card.ID, err)
			}
			if ts != nil && !card.UpdatedAt.After(ts.DeletedAt) {
				logger.Debug("skipping deleted card", "id", card.ID)
				continue
			}
		case err != nil:
			return merged, fmt.Errorf("failed to read card %s: %w", card.ID, err)
		case !card.UpdatedAt.After(local.UpdatedAt):
			logger.Debug("keeping local card", "id", card.ID)
			continue
		}

		if err := db.UpsertCard(conn, card); err != nil {
			return merged, fmt.Errorf("failed to store card %s: %w", card.ID, err)
		}
		merged++
	}
	return merged, nil
}

var syncShowCmd = &cobra.Command{
	Use:         "show <id-prefix>",
	Short:       "Show the Charm copy of a card",
	Long:        `Print the card stored in the Charm KV store, which may differ from the local one.`,
	Args:        cobra.ExactArgs(1),
	Annotations: skipDB,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newCharmClient()
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}

		card, err := client.GetCardByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("failed to get remote card: %w", err)
		}

		fmt.Print(ui.FormatCardHeader(card))
		fmt.Print(ui.FormatProperties(card))
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local sync data",
	Long: `Reset the local KV replica while keeping cloud data intact.
The card database is not touched.`,
	Annotations: skipDB,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm("This will reset local sync data.\nCloud data will be preserved and re-synced.\n\nContinue? [y/N]: ", "y", "yes") {
			fmt.Println("Aborted.")
			return nil
		}

		client, err := newCharmClient()
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}
		if err := client.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		color.Green("✓ Local sync data reset")
		fmt.Println("\nRun 'vcardz sync pull' to re-sync from cloud.")

		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Wipe all sync data and start fresh",
	Long: `Delete all synced cards from Charm cloud and the local KV replica.
The card database is not touched.`,
	Annotations: skipDB,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will DELETE all sync data:")
		fmt.Println("  - All cards in Charm cloud")
		fmt.Println("  - Local KV replica")
		fmt.Println()
		color.Yellow("This cannot be undone!")
		if !confirm("\nType 'wipe' to confirm: ", "wipe") {
			fmt.Println("Aborted.")
			return nil
		}

		client, err := newCharmClient()
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}
		deleted, err := client.Wipe()
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		fmt.Printf("\n  ✓ Deleted %d cards from Charm\n", deleted)
		color.Green("\n✓ All sync data wiped")
		return nil
	},
}

// confirm prints prompt and reports whether the reply on stdin is one of
// accepted.
func confirm(prompt string, accepted ...string) bool {
	return confirmFrom(os.Stdin, prompt, accepted...)
}

func confirmFrom(r io.Reader, prompt string, accepted ...string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(r)
	reply, _ := reader.ReadString('\n')
	reply = strings.TrimSpace(reply)
	for _, a := range accepted {
		if strings.EqualFold(reply, a) {
			return true
		}
	}
	return false
}

func init() {
	syncLinkCmd.Flags().String("host", "", "Charm server host (default: cloud.charm.sh)")

	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncShowCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	rootCmd.AddCommand(syncCmd)
}

// valueOrNone returns "(not set)" if the string is empty.
func valueOrNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
