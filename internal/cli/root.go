package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/combo/config"
	"github.com/rustyeddy/combo/internal/logging"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

// rootConfig carries the persistent flags and what PersistentPreRunE
// derives from them.
type rootConfig struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string
	LogFormat  string

	cfg config.Config
	log *slog.Logger
}

func NewRootCmd() *cobra.Command {
	rc := &rootConfig{}

	cmd := &cobra.Command{
		Use:   "combo",
		Short: "Candle combo simulator",
		Long: `Combo drives a single OHLC candle engine: candles are added with a random
move, ticked while playing, and scored when a close lands inside the
candle's target band. Consecutive hits build a combo that boosts the next
candle.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file, YAML or JSON (optional)")
	cmd.PersistentFlags().StringVar(&rc.EnvFile, "env-file", ".env", "dotenv file loaded before reading COMBO_* variables")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	cmd.PersistentFlags().StringVar(&rc.LogFormat, "log-format", "", "Log format: text|json (overrides config)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.load(cmd)
	}

	cmd.AddCommand(
		newRunCmd(rc),
		newPlayCmd(rc),
		newConfigCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "combo version %s\n", version)
			},
		},
	)

	return cmd
}

func (rc *rootConfig) load(cmd *cobra.Command) error {
	if rc.EnvFile != "" {
		if err := godotenv.Load(rc.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := config.Default()
	if rc.ConfigPath != "" {
		loaded, err := config.LoadFromFile(rc.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return fmt.Errorf("apply env: %w", err)
	}
	if rc.LogLevel != "" {
		cfg.Log.Level = rc.LogLevel
	}
	if rc.LogFormat != "" {
		cfg.Log.Format = rc.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	rc.cfg = cfg
	rc.log = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	return nil
}
