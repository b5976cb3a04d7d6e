// ABOUTME: Add command for creating new cards from content lines.
// ABOUTME: Lines come from arguments, --file, or $EDITOR.

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/models"
	"github.com/harper/vcardz/internal/ui"
	"github.com/harper/vcardz/internal/vcf"
	"github.com/spf13/cobra"
)

const editorTemplate = `FN:
EMAIL;TYPE=work:
TEL;TYPE=cell:
`

var addCmd = &cobra.Command{
	Use:   "add [line...]",
	Short: "Add a new card",
	Long: `Create a new card from vCard content lines such as "FN:Jane Doe" or
"TEL;TYPE=cell:+1-555-0100". Lines can be given as arguments, read with
--file, or typed into $EDITOR when neither is provided.`,
	Example: `  vcardz add "FN:Jane Doe" "EMAIL;TYPE=work:jane@example.com"
  vcardz add --fn "Jane Doe" --email jane@example.com --tel +1-555-0100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fileFlag, _ := cmd.Flags().GetString("file")

		lines := append([]string{}, args...)
		lines = append(lines, shorthandLines(cmd)...)

		switch {
		case fileFlag != "":
			data, err := os.ReadFile(fileFlag) //nolint:gosec // User-specified file path is expected CLI behavior
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			lines = append(lines, splitLines(string(data))...)
		case len(lines) == 0:
			content, err := openEditor(editorTemplate)
			if err != nil {
				return fmt.Errorf("failed to open editor: %w", err)
			}
			lines = splitLines(content)
		}

		card, err := buildCard(lines)
		if err != nil {
			return err
		}

		if err := db.CreateCard(dbConn, card); err != nil {
			return fmt.Errorf("failed to create card: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Created card %s", card.ID.String()[:6])))
		return nil
	},
}

// shorthandLines turns the convenience flags into content lines.
func shorthandLines(cmd *cobra.Command) []string {
	var lines []string
	if fn, _ := cmd.Flags().GetString("fn"); fn != "" {
		lines = append(lines, "FN:"+models.Escape(fn))
	}
	emails, _ := cmd.Flags().GetStringSlice("email")
	for _, e := range emails {
		lines = append(lines, "EMAIL:"+e)
	}
	tels, _ := cmd.Flags().GetStringSlice("tel")
	for _, t := range tels {
		lines = append(lines, "TEL:"+t)
	}
	return lines
}

// buildCard routes each line into a new card. Blank lines are ignored and
// malformed ones are reported and skipped.
func buildCard(lines []string) (*models.Card, error) {
	card := models.NewCard()
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := vcf.SetLine(card, line); err != nil {
			logger.Warn("skipping line", "line", line, "err", err)
		}
	}
	if len(card.Keys()) == 0 {
		return nil, fmt.Errorf("card needs at least one valid content line")
	}
	return card, nil
}

func splitLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		// Editor template lines left empty carry no value.
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func openEditor(initial string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}

	tmpFile, err := os.CreateTemp("", "vcardz-*.txt")
	if err != nil {
		return "", err
	}
	defer func() {
		_ = os.Remove(tmpFile.Name()) // Best-effort cleanup
	}()

	if initial != "" {
		if _, err := tmpFile.WriteString(initial); err != nil {
			_ = tmpFile.Close()
			return "", fmt.Errorf("failed to write initial content: %w", err)
		}
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.Command(editor, tmpFile.Name()) //nolint:gosec // Launching $EDITOR is expected CLI behavior
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func init() {
	addCmd.Flags().String("file", "", "read content lines from file")
	addCmd.Flags().String("fn", "", "formatted name")
	addCmd.Flags().StringSlice("email", nil, "email address (repeatable)")
	addCmd.Flags().StringSlice("tel", nil, "phone number (repeatable)")
	rootCmd.AddCommand(addCmd)
}
