// ABOUTME: List command for displaying cards.
// ABOUTME: Supports filtering by property name and full-text search.

package main

import (
	"fmt"

	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/models"
	"github.com/harper/vcardz/internal/ui"
	"github.com/spf13/cobra"
)

const defaultListLimit = 20

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cards",
	Long:  `List cards by most recent update, optionally only those carrying a property or matching a search query.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		propFlag, _ := cmd.Flags().GetString("prop")
		searchFlag, _ := cmd.Flags().GetString("search")
		limitFlag, _ := cmd.Flags().GetInt("limit")

		var cards []*models.Card
		if searchFlag != "" {
			results, err := db.SearchCards(dbConn, searchFlag, limitFlag)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			for _, r := range results {
				cards = append(cards, r.Card)
			}
		} else {
			var prop *string
			if propFlag != "" {
				prop = &propFlag
			}
			var err error
			cards, err = db.ListCards(dbConn, prop, limitFlag)
			if err != nil {
				return fmt.Errorf("failed to list cards: %w", err)
			}
		}

		if len(cards) == 0 {
			fmt.Println("No cards found.")
			return nil
		}

		for _, card := range cards {
			fmt.Print(ui.FormatCardListItem(card))
		}
		return nil
	},
}

var propsCmd = &cobra.Command{
	Use:   "props",
	Short: "List property names in use",
	Long:  `Show every property name stored across cards and how many cards carry it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := db.ListPropertyNames(dbConn)
		if err != nil {
			return fmt.Errorf("failed to list properties: %w", err)
		}
		if len(counts) == 0 {
			fmt.Println("No properties found.")
			return nil
		}

		out := make([]ui.PropertyCount, len(counts))
		for i, c := range counts {
			out[i] = ui.PropertyCount{Name: c.Name, Count: c.Count}
		}
		fmt.Print(ui.FormatPropertyCounts(out))
		return nil
	},
}

func init() {
	listCmd.Flags().String("prop", "", "only cards carrying this property")
	listCmd.Flags().StringP("search", "s", "", "full-text search query")
	listCmd.Flags().IntP("limit", "n", defaultListLimit, "max results")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(propsCmd)
}
