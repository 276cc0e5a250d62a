package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/config"
	"github.com/mgpai22/subburn/internal/logging"
)

// commands annotated with this key run without loading the config file
const skipConfigAnnotation = "subburn/skip-config"

var (
	verbose    bool
	quiet      bool
	configPath string

	logger *logging.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subburn",
	Short: "Generate subtitles for videos and burn them in",
	Long: `Subburn transcribes the speech in a video into an SRT subtitle file and
a plain-text transcript, and hard-codes (burns) subtitles into the video
frames with ffmpeg.

Settings are read from ~/.config/subburn/config.toml or ./subburn.toml;
command-line flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose).With("run_id", uuid.NewString())

		if cmd.Annotations[skipConfigAnnotation] == "true" {
			defaults := config.Default()
			cfg = &defaults
			return nil
		}

		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debugw("Configuration loaded", "path", path, "exists", exists)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the command tree; SIGINT and SIGTERM cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress ffmpeg output and progress")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ~/.config/subburn/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, fr)")
}

// stringFlag returns the flag value when the user set it, otherwise fallback.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		value, _ := cmd.Flags().GetString(name)
		return value
	}
	return fallback
}

func intFlag(cmd *cobra.Command, name string, fallback int) int {
	if cmd.Flags().Changed(name) {
		value, _ := cmd.Flags().GetInt(name)
		return value
	}
	return fallback
}

func boolFlag(cmd *cobra.Command, name string, fallback bool) bool {
	if cmd.Flags().Changed(name) {
		value, _ := cmd.Flags().GetBool(name)
		return value
	}
	return fallback
}

// resolveAPIKey returns the --api-key flag, else the configured key when
// provider is the configured one, else the provider's env var.
func resolveAPIKey(cmd *cobra.Command, provider, configuredProvider, configuredKey, envName string) (string, error) {
	key := stringFlag(cmd, "api-key", "")
	if key == "" && strings.EqualFold(provider, configuredProvider) {
		key = configuredKey
	}
	if key == "" {
		key = strings.TrimSpace(os.Getenv(envName))
	}
	if key == "" {
		return "", fmt.Errorf("API key is required: use --api-key flag or set %s environment variable", envName)
	}
	return key, nil
}

func fileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
