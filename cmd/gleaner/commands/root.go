// Package commands implements the CLI commands for gleaner.
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/gleaner/internal/config"
	"github.com/jmylchreest/gleaner/internal/logger"
)

// settings is populated by the root command before any subcommand runs.
var settings config.Settings

var rootCmd = &cobra.Command{
	Use:   "gleaner",
	Short: "Structured records from noisy listing, news and table pages",
	Long: `Gleaner cleans saved or fetched HTML and extracts flat records from it.

Product listings become catalog records, news search results become
articles, and subsidy tables become per-region quota rows. Records are
deduplicated by a stable content hash and written as JSON, JSONL, YAML
or XLSX.

Examples:
  # Extract list items from numbered dumps
  gleaner catalog 'dumps/catalog_*.txt' --category kettle -o kettles.xlsx

  # Product cards fetched with a headless browser
  gleaner catalog https://shop.example/deals --shape product --fetch-mode dynamic

  # Merge news from two sites, newest first
  gleaner news --naver naver.html --investing investing.html

  # Run every job in a file
  gleaner run jobs.yaml`,
	SilenceUsage: true,
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (initConfig refers to rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return initConfig()
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.gleaner.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "log as JSON")

	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.StringP("format", "f", "", "output format: json, jsonl, yaml, xlsx, table (default: from output extension, else json)")
	flags.String("store", "", "sqlite file remembering ids across runs")
	flags.String("max-input-size", "", "max size of a file input (e.g. 5MB, 0=unlimited)")

	flags.String("fetch-mode", "", "fetch mode for URL inputs: static, dynamic, auto")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("user-agent", "", "user agent for URL inputs")
	flags.Bool("headful", false, "show the browser window in dynamic mode")
	flags.Bool("stealth", false, "mask headless browser markers in dynamic mode")

	flags.String("next", "", "CSS selector of the next-page link; URL inputs follow it")
	flags.Int("max-pages", 0, "max pages per URL input when following next links (0=unlimited)")
	flags.Duration("page-delay", 500*time.Millisecond, "delay between paginated fetches")

	bind := map[string]string{
		"debug":                "debug",
		"quiet":                "quiet",
		"log_level":            "log-level",
		"log_json":             "log-json",
		"store":                "store",
		"max_input_size":       "max-input-size",
		"fetch_mode":           "fetch-mode",
		"fetch.timeout":        "timeout",
		"fetch.user_agent":     "user-agent",
		"fetch.stealth":        "stealth",
		"pagination.next":      "next",
		"pagination.max_pages": "max-pages",
		"pagination.delay":     "page-delay",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initConfig() error {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	v := viper.GetViper()
	if err := config.Init(v, cfgFile); err != nil {
		return err
	}
	s, err := config.Load(v)
	if err != nil {
		return err
	}
	if headful, _ := rootCmd.PersistentFlags().GetBool("headful"); headful {
		s.Fetch.Headless = false
	}
	settings = s

	logger.Init(logger.Options{
		Debug: s.Debug,
		Quiet: s.Quiet,
		Level: s.LogLevel,
		JSON:  s.LogJSON,
	})
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "file", used)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !settings.Quiet {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
