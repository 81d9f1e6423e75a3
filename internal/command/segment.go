// Package command implements the reverie subcommands.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reverie-dev/reverie/internal/reasoning"
	"github.com/reverie-dev/reverie/internal/source"
)

const readChunkSize = 4 * 1024

// SegmentCommand segments a streamed model response from stdin or a file.
func SegmentCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment [file]",
		Short: "Segment a model response into plain and reasoning blocks",
		Long: `Segment reads a model response, splits it into plain and reasoning
blocks using the configured tag pairs, and prints the rendered markup.

Examples:
  # Segment plain text from stdin
  cat response.txt | reverie segment

  # Segment a captured OpenAI SSE stream
  reverie segment --format openai-sse stream.sse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSegment(app, cmd, args)
		},
	}

	cmd.Flags().String("format", "text", "Input format: text or openai-sse")
	cmd.Flags().Bool("json", false, "Print blocks as JSON instead of markup")

	return cmd
}

func runSegment(app *App, cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	asJSON, _ := cmd.Flags().GetBool("json")

	appConfig, err := app.Config()
	if err != nil {
		return err
	}
	table, err := appConfig.TagTable()
	if err != nil {
		return err
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

	seg := reasoning.NewSegmenter(table)

	switch format {
	case "text":
		if err := feedText(seg, input); err != nil {
			return err
		}
	case "openai-sse":
		if err := feedSSE(seg, input, appConfig.TagPairs()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid format '%s': supported formats are text and openai-sse", format)
	}
	seg.Finish()

	out := cmd.OutOrStdout()
	if asJSON {
		return writeBlocksJSON(out, seg.Blocks())
	}
	fmt.Fprintln(out, reasoning.SerializeAll(seg.Blocks()))
	return nil
}

// feedText streams raw text into the segmenter in fixed-size chunks so the
// cross-fragment matching path is exercised the same way as live streaming.
func feedText(seg *reasoning.Segmenter, r io.Reader) error {
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			seg.Feed(string(buf[:n]))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
}

type blockJSON struct {
	Kind         string `json:"kind"`
	TagStart     string `json:"tag_start,omitempty"`
	TagEnd       string `json:"tag_end,omitempty"`
	Content      string `json:"content"`
	Done         bool   `json:"done"`
	DurationSecs int    `json:"duration_secs"`
}

func writeBlocksJSON(w io.Writer, blocks []*reasoning.Block) error {
	out := make([]blockJSON, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockJSON{
			Kind:         string(b.Kind),
			TagStart:     b.Pair.Start,
			TagEnd:       b.Pair.End,
			Content:      b.Content(),
			Done:         b.Done,
			DurationSecs: b.DurationSeconds(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func feedSSE(seg *reasoning.Segmenter, r io.Reader, pairs []reasoning.TagPair) error {
	if len(pairs) == 0 {
		return errors.New("openai-sse input needs at least one configured tag pair")
	}

	reader := source.NewSSEReader(r, source.NewChunkDecoder(pairs[0]))
	for {
		frag, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event stream: %w", err)
		}
		seg.Feed(frag)
	}
}
