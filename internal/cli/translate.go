package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/subtitle"
	"github.com/mgpai22/subburn/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate <file.srt>",
	Short: "Translate the cue text of an SRT file",
	Long: `Translate the text of every cue with an LLM provider. Cue numbers and
timings are written back unchanged.

With --overlay each cue carries the translation on top and the original
text on the line below, for bilingual subtitles.

Examples:
  subburn translate talk.srt -t japanese
  subburn translate talk.srt -t ja --overlay
  subburn translate talk.srt -l english -t spanish -o talk.es.srt
  subburn translate talk.srt -t german --provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	flags := translateCmd.Flags()
	flags.StringP("target-language", "t", "", "Language to translate into")
	flags.Bool("overlay", false, "Keep the original text under the translation")
	flags.StringP("api-key", "k", "", "Provider API key (default: provider env var)")
	flags.String("model", "", "Provider model (default: provider specific)")
	flags.String("provider", "", "Translation provider: gemini, openai or anthropic")
	flags.String("prompt", "", "Extra instructions for the translator")
	flags.Int("concurrency", translate.DefaultConcurrency, "Batches translated in parallel")
	flags.Int("batch-size", translate.DefaultBatchSize, "Cues per request")
}

// flags merged over the [translation] config section
type translateSettings struct {
	provider    translate.Provider
	options     translate.Options
	overlay     bool
	concurrency int
}

func loadTranslateSettings(cmd *cobra.Command) (translateSettings, error) {
	tc := cfg.Translation

	provider, err := translate.ParseProvider(stringFlag(cmd, "provider", tc.Provider))
	if err != nil {
		return translateSettings{}, err
	}

	s := translateSettings{
		provider: provider,
		options: translate.Options{
			InputLanguage:  stringFlag(cmd, "language", tc.InputLanguage),
			TargetLanguage: stringFlag(cmd, "target-language", tc.TargetLanguage),
			Model:          stringFlag(cmd, "model", tc.Model),
			Prompt:         stringFlag(cmd, "prompt", tc.Prompt),
			BatchSize:      intFlag(cmd, "batch-size", tc.BatchSize),
		},
		overlay:     boolFlag(cmd, "overlay", tc.Overlay),
		concurrency: intFlag(cmd, "concurrency", tc.Concurrency),
	}
	return s, s.validate()
}

func (s translateSettings) validate() error {
	in := strings.TrimSpace(s.options.InputLanguage)
	target := strings.TrimSpace(s.options.TargetLanguage)
	switch {
	case target == "":
		return errors.New("target language is required: use --target-language or set translation.target_language")
	case in != "" && strings.EqualFold(in, target):
		return fmt.Errorf("input language %q and target language %q cannot be the same", in, target)
	case s.concurrency <= 0:
		return fmt.Errorf("concurrency must be positive, got %d", s.concurrency)
	case s.options.BatchSize <= 0:
		return fmt.Errorf("batch-size must be positive, got %d", s.options.BatchSize)
	}
	return nil
}

// translatedPath names the output next to the input, e.g. video.ja.srt.
func translatedPath(subtitlePath, targetLang string, overlay bool) string {
	ext := filepath.Ext(subtitlePath)
	lang := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(targetLang), " ", "_"))
	if overlay {
		lang += ".overlay"
	}
	return strings.TrimSuffix(subtitlePath, ext) + "." + lang + ext
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := cmd.Context()

	settings, err := loadTranslateSettings(cmd)
	if err != nil {
		return err
	}
	if err := fileExists(subtitlePath); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(subtitlePath)); ext != ".srt" {
		return fmt.Errorf("unsupported subtitle format %q: only .srt files can be translated", ext)
	}

	provider := settings.provider
	apiKey, err := resolveAPIKey(cmd, string(provider), cfg.Translation.Provider, cfg.Translation.APIKey,
		translate.APIKeyEnv(provider))
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = translatedPath(subtitlePath, settings.options.TargetLanguage, settings.overlay)
	}

	doc, err := subtitle.ReadFile(subtitlePath)
	if err != nil {
		return err
	}
	if doc.Len() == 0 {
		return errors.New("subtitle file contains no cues")
	}

	translator, err := translate.Factory(ctx, provider, apiKey, settings.options)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating subtitles",
		"input", subtitlePath,
		"output", outputPath,
		"provider", provider,
		"target_language", settings.options.TargetLanguage,
		"cues", doc.Len(),
		"concurrency", settings.concurrency,
		"batch_size", settings.options.BatchSize,
		"overlay", settings.overlay,
	)

	err = translate.TranslateDocument(ctx, translator, doc, translate.DocumentOptions{
		Concurrency: settings.concurrency,
		Overlay:     settings.overlay,
	})
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if err := subtitle.WriteFile(outputPath, doc); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Subtitles translated: %s\n", outputPath)
	fmt.Fprintf(out, "  Cues: %d\n", doc.Len())
	if settings.overlay {
		fmt.Fprintln(out, "  Mode: bilingual overlay")
	}
	return nil
}
