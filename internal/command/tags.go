package command

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reverie-dev/reverie/internal/reasoning"
)

// TagsCommand shows and manages the configured reasoning tag pairs.
func TagsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show the configured reasoning tag pairs",
		Long: `Tags prints the reasoning tag pairs in their configured order. Order
matters: when several pairs could apply, the first configured one wins.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagsList(app, cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Write the built-in default tag pairs to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagsReset(app, cmd)
		},
	})

	return cmd
}

func runTagsList(app *App, cmd *cobra.Command) error {
	appConfig, err := app.Config()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "START\tEND")
	for _, p := range appConfig.TagPairs() {
		fmt.Fprintf(w, "%s\t%s\n", p.Start, p.End)
	}
	return w.Flush()
}

func runTagsReset(app *App, cmd *cobra.Command) error {
	appConfig, err := app.Config()
	if err != nil {
		return err
	}

	if err := appConfig.SaveTagPairs(reasoning.DefaultTagPairs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d default tag pairs to %s\n",
		len(reasoning.DefaultTagPairs), appConfig.ConfigDir())
	return nil
}
