package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/subtitle"
)

var textCmd = &cobra.Command{
	Use:   "text [subtitle_file]",
	Short: "Write the plain-text transcript of an SRT file",
	Long: `Strip cue numbers and time ranges from an SRT file and write the
remaining text, one line per subtitle line, to <file>.txt.

Examples:
  subburn text video.srt
  subburn text video.srt -o transcript.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runText,
}

func init() {
	rootCmd.AddCommand(textCmd)
}

func runText(cmd *cobra.Command, args []string) error {
	srtPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")

	if err := fileExists(srtPath); err != nil {
		return err
	}

	content, err := os.ReadFile(srtPath)
	if err != nil {
		return fmt.Errorf("failed to read subtitle file: %w", err)
	}

	if outputPath == "" {
		outputPath = transcriptPath(srtPath)
	}

	if err := writeTranscript(outputPath, subtitle.ProjectText(string(content))); err != nil {
		return err
	}

	logger.Infow("Transcript written", "input", srtPath, "output", outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Transcript written: %s\n", outputPath)
	return nil
}
