package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/subtitle"
)

var renumberCmd = &cobra.Command{
	Use:   "renumber [subtitle_file]",
	Short: "Renumber the cues of an SRT file 1..N",
	Long: `Read an SRT file, reassign cue indices 1..N in file order and write it
back (in place unless --output is given). Timings and text are unchanged.

Examples:
  subburn renumber edited.srt
  subburn renumber edited.srt -o fixed.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runRenumber,
}

func init() {
	rootCmd.AddCommand(renumberCmd)
}

func runRenumber(cmd *cobra.Command, args []string) error {
	srtPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = srtPath
	}

	if err := fileExists(srtPath); err != nil {
		return err
	}

	doc, err := subtitle.ReadFile(srtPath)
	if err != nil {
		return err
	}
	doc.Renumber()

	if err := subtitle.WriteFile(outputPath, doc); err != nil {
		return err
	}

	logger.Infow("Renumbered subtitles", "input", srtPath, "output", outputPath, "cues", doc.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "Renumbered %d cues: %s\n", doc.Len(), outputPath)
	return nil
}
