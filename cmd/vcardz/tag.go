// ABOUTME: Tag commands for inspecting content-line specifiers.
// ABOUTME: Parses a line and looks up stored lines with the same tag.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/models"
	"github.com/harper/vcardz/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Inspect vCard tags",
	Long: `Work with the specifier part of a content line: group, property name
and attributes.

Commands:
  parse  - Parse a line and print its tag
  find   - Find stored lines that share a line's tag`,
}

var tagParseCmd = &cobra.Command{
	Use:         "parse <line>",
	Short:       "Parse a content line",
	Long:        `Parse the specifier of a content line and print it as text, JSON or YAML.`,
	Example:     `  vcardz tag parse "item1.TEL;TYPE=work,voice:+1-555-0100" --format json`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipDBAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		tag := models.NewTag(args[0])
		switch format {
		case "text":
			fmt.Print(ui.FormatTag(tag))
		case "json":
			data, err := json.MarshalIndent(tag.ToObject(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode tag: %w", err)
			}
			fmt.Println(string(data))
		case "yaml":
			data, err := yaml.Marshal(tag.ToObject())
			if err != nil {
				return fmt.Errorf("failed to encode tag: %w", err)
			}
			fmt.Print(string(data))
		default:
			return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
		}

		if tag.IsEmpty() {
			return fmt.Errorf("could not parse tag from %q", args[0])
		}
		return nil
	},
}

var tagFindCmd = &cobra.Command{
	Use:   "find <line>",
	Short: "Find lines with the same tag",
	Long:  `List stored lines whose group, property name and attributes match the given line.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := models.NewTag(args[0])
		if tag.IsEmpty() {
			return fmt.Errorf("could not parse tag from %q", args[0])
		}

		matches, err := db.FindByTagHash(dbConn, tag.Sum())
		if err != nil {
			return fmt.Errorf("lookup failed: %w", err)
		}
		if len(matches) == 0 {
			fmt.Println("No matching lines.")
			return nil
		}

		for _, m := range matches {
			fmt.Printf("  %s  %s\n", m.CardID.String()[:6], m.Line)
		}
		return nil
	},
}

func init() {
	tagParseCmd.Flags().StringP("format", "f", "text", "output format: text, json or yaml")

	tagCmd.AddCommand(tagParseCmd)
	tagCmd.AddCommand(tagFindCmd)
	rootCmd.AddCommand(tagCmd)
}
