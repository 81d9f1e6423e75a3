package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/reverie-dev/reverie/internal/reasoning"
)

// FilterCommand removes or extracts collapsible wrappers from stored markup.
func FilterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter [file]",
		Short: "Remove or extract reasoning wrappers from rendered markup",
		Long: `Filter scans rendered markup for collapsible wrapper elements and
either removes them or keeps only their content, by declared type.

With --json-path the input is treated as a JSON document and the filter is
applied to the string value at that path, leaving the rest untouched.

Examples:
  # Strip reasoning wrappers before sending history back to a model
  cat history.md | reverie filter

  # Keep only the reasoning sections
  reverie filter --mode keep history.md

  # Filter the content field inside a stored chat message
  reverie filter --json-path message.content message.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, args)
		},
	}

	addFilterFlags(cmd.Flags())
	return cmd
}

func addFilterFlags(flags *pflag.FlagSet) {
	flags.StringSlice("kind", []string{reasoning.WrapperTypeReasoning}, "Wrapper types to match")
	flags.String("mode", "remove", "Filter mode: remove or keep")
	flags.String("json-path", "", "Apply the filter to a string field inside a JSON document")
}

func runFilter(cmd *cobra.Command, args []string) error {
	kinds, _ := cmd.Flags().GetStringSlice("kind")
	modeStr, _ := cmd.Flags().GetString("mode")
	jsonPath, _ := cmd.Flags().GetString("json-path")

	var mode reasoning.FilterMode
	switch strings.ToLower(modeStr) {
	case "remove":
		mode = reasoning.ModeRemove
	case "keep":
		mode = reasoning.ModeKeepOnly
	default:
		return fmt.Errorf("invalid mode '%s': supported modes are remove and keep", modeStr)
	}

	input := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		input = f
	}

	raw, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonPath == "" {
		fmt.Fprintln(out, reasoning.Filter(string(raw), kinds, mode))
		return nil
	}

	field := gjson.GetBytes(raw, jsonPath)
	if !field.Exists() {
		return fmt.Errorf("path %q not found in JSON input", jsonPath)
	}
	if field.Type != gjson.String {
		return fmt.Errorf("path %q is not a string field", jsonPath)
	}

	filtered := reasoning.Filter(field.String(), kinds, mode)
	updated, err := sjson.SetBytes(raw, jsonPath, filtered)
	if err != nil {
		return fmt.Errorf("failed to update JSON document: %w", err)
	}

	fmt.Fprintln(out, string(updated))
	return nil
}
