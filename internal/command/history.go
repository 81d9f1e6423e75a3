package command

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reverie-dev/reverie/internal/data/db"
	"github.com/reverie-dev/reverie/internal/reasoning"
)

// HistoryCommand lists archived streams and shows their blocks.
func HistoryCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [stream-id]",
		Short: "List archived streams or show one stream's markup",
		Long: `History lists the most recently archived streams. Given a stream id
it prints that stream's rendered markup instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(app, cmd, args)
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of streams to list")

	return cmd
}

func runHistory(app *App, cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	appConfig, err := app.Config()
	if err != nil {
		return err
	}
	store, err := db.NewStreamStore(appConfig.ConfigDir())
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		records, err := store.BlocksForStream(args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no archived stream with id %s", args[0])
		}
		fmt.Fprintln(out, markupFromRecords(records))
		return nil
	}

	summaries, err := store.RecentStreams(limit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No archived streams.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STREAM\tBLOCKS\tREASONING\tTHINKING\tARCHIVED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%ds\t%s\n",
			s.StreamID, s.Blocks, s.ReasoningBlocks, s.ThinkingSecs,
			s.ArchivedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

// markupFromRecords rebuilds the rendered markup of an archived stream.
func markupFromRecords(records []db.BlockRecord) string {
	blocks := make([]*reasoning.Block, 0, len(records))
	for _, r := range records {
		pair := reasoning.TagPair{Start: r.TagStart, End: r.TagEnd}
		blocks = append(blocks, reasoning.RestoreBlock(
			r.BlockID, reasoning.BlockKind(r.Kind), pair,
			r.Content, r.StartedAt, r.EndedAt, r.Done,
		))
	}
	return reasoning.SerializeAll(blocks)
}
