package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/subtitle"
)

var cuesCmd = &cobra.Command{
	Use:   "cues [subtitle_file]",
	Short: "List the cues of an SRT file as a table",
	Long: `Parse an SRT file and print its cues with their timing. Parsing is
strict, so this also checks that a hand-edited file is well formed.

Examples:
  subburn cues video.srt
  subburn cues video.srt --width 60`,
	Args: cobra.ExactArgs(1),
	RunE: runCues,
}

func init() {
	rootCmd.AddCommand(cuesCmd)

	cuesCmd.Flags().Int("width", 48, "Truncate cue text to this many characters (0 disables)")
}

func runCues(cmd *cobra.Command, args []string) error {
	width, _ := cmd.Flags().GetInt("width")

	if err := fileExists(args[0]); err != nil {
		return err
	}
	doc, err := subtitle.ReadFile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cueTable(doc, width))
	return nil
}

func cueTable(doc *subtitle.Document, width int) string {
	rows := make([][]string, 0, doc.Len())
	for cue := range doc.Cues() {
		rows = append(rows, []string{
			strconv.Itoa(cue.Index),
			subtitle.FormatTimestamp(cue.Start),
			subtitle.FormatTimestamp(cue.End),
			strconv.FormatFloat(cue.Duration(), 'f', 3, 64),
			strings.ReplaceAll(cue.Text, "\n", " / "),
		})
	}

	return renderTable([]column{
		{header: "#", align: text.AlignRight},
		{header: "Start"},
		{header: "End"},
		{header: "Seconds", align: text.AlignRight},
		{header: "Text", maxRunes: width},
	}, rows)
}
