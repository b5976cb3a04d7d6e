// ABOUTME: Set and unset commands for editing card properties.
// ABOUTME: Lines are routed to typed wrappers by property name.

package main

import (
	"fmt"
	"strings"

	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/models"
	"github.com/harper/vcardz/internal/ui"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <id-prefix> [NAME] <line>",
	Short: "Add a value to a card property",
	Long: `Add a content line to a card. When NAME is omitted the line's own
property name is used. A bare value without ':' takes NAME as its property.`,
	Example: `  vcardz set 3f2a9c "EMAIL;TYPE=home:jane@home.example"
  vcardz set 3f2a9c ADR "123 Main St"`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		replace, _ := cmd.Flags().GetBool("replace")

		line := args[len(args)-1]
		var name string
		if len(args) == 3 {
			name = strings.ToUpper(args[1])
		} else {
			name = models.NewTag(line).Prop()
		}
		if name == "" {
			return fmt.Errorf("could not determine property name from %q", line)
		}

		card, err := db.GetCard(dbConn, args[0])
		if err != nil {
			return fmt.Errorf("failed to get card: %w", err)
		}

		if replace {
			card.Delete(name)
		}
		card.Set(name, models.Raw(line))

		if err := db.UpdateCard(dbConn, card); err != nil {
			return fmt.Errorf("failed to update card: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Set %s on card %s", name, card.ID.String()[:6])))
		return nil
	},
}

var unsetCmd = &cobra.Command{
	Use:   "unset <id-prefix> <NAME>",
	Short: "Remove a property from a card",
	Long:  `Remove a property and every value stored under it.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToUpper(args[1])

		card, err := db.GetCard(dbConn, args[0])
		if err != nil {
			return fmt.Errorf("failed to get card: %w", err)
		}
		if !card.Has(name) {
			return fmt.Errorf("card %s has no property %s", card.ID.String()[:6], name)
		}

		card.Delete(name)
		if err := db.UpdateCard(dbConn, card); err != nil {
			return fmt.Errorf("failed to update card: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Removed %s from card %s", name, card.ID.String()[:6])))
		return nil
	},
}

func init() {
	setCmd.Flags().Bool("replace", false, "drop existing values before setting")
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(unsetCmd)
}
