package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/gleaner/internal/logger"
	"github.com/jmylchreest/gleaner/pkg/cleaner/flatten"
	"github.com/jmylchreest/gleaner/pkg/cleaner/sanitize"
	"github.com/jmylchreest/gleaner/pkg/fetcher"
	"github.com/jmylchreest/gleaner/pkg/gleaner"
	"github.com/jmylchreest/gleaner/pkg/markup"
	"github.com/jmylchreest/gleaner/pkg/source"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [url-or-file]",
	Short: "Print a cleaned page for inspection",
	Long: `Sanitize and flatten one page and print the result on a single line,
with cleaning stats on stderr. Reads stdin when no input is given.

Examples:
  gleaner clean catalog_1.txt
  gleaner clean --preset marketplace --keep-class product-item cards.html
  gleaner clean --select 'ul#productList > li' page.html
  gleaner clean --compare page.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()
	flags.StringP("preset", "p", "default", "sanitize preset: default, marketplace, minimal")
	flags.Bool("no-flatten", false, "skip wrapper flattening")
	flags.StringSlice("keep-class", nil, "classes that protect a container from flattening")
	flags.String("select", "", "print the raw elements matching a CSS selector instead of cleaning")
	flags.Bool("stats-only", false, "only print stats")
	flags.Bool("json-stats", false, "print stats as JSON on stdout")
	flags.Bool("compare", false, "compare the sanitize presets")
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	name, html, err := loadOne(ctx, args)
	if err != nil {
		return err
	}
	logger.Debug("clean input loaded", "source", name, "size", humanize.Bytes(uint64(len(html))))

	flags := cmd.Flags()
	if sel, _ := flags.GetString("select"); sel != "" {
		matches, err := gleaner.Select(html, sel)
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Println(m)
		}
		logInfo("%d elements match %q", len(matches), sel)
		return nil
	}

	root, err := markup.Parse(html)
	if err != nil {
		return err
	}

	if compare, _ := flags.GetBool("compare"); compare {
		runComparison(root, name)
		return nil
	}

	presetName, _ := flags.GetString("preset")
	cfg, ok := sanitize.Preset(presetName)
	if !ok {
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	san := sanitize.New(cfg)
	result := san.SanitizeWithStats(root)
	tree := result.Root

	var scans, unwraps int
	if noFlatten, _ := flags.GetBool("no-flatten"); !noFlatten {
		keep, _ := flags.GetStringSlice("keep-class")
		fl := flatten.New(&flatten.Config{ContainerTags: []string{"div"}, KeepClasses: keep})
		tree = fl.Flatten(tree)
		scans, unwraps = fl.LastRun()
	}
	out := strings.NewReplacer("\n", "", "\r", "").Replace(tree.String())

	if jsonStats, _ := flags.GetBool("json-stats"); jsonStats {
		if err := writeJSONStats(os.Stdout, name, result, scans, unwraps); err != nil {
			return err
		}
	} else if !settings.Quiet {
		fmt.Fprintf(os.Stderr, "=== Clean Stats ===\nSource: %s\n%s", name, result.Stats.String())
		fmt.Fprintf(os.Stderr, "Flatten: %d unwraps in %d scans\n", unwraps, scans)
		fmt.Fprintf(os.Stderr, "Size: %s -> %s\n", humanize.Bytes(uint64(len(html))), humanize.Bytes(uint64(len(out))))
		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w.String())
		}
	}

	if statsOnly, _ := flags.GetBool("stats-only"); statsOnly {
		return nil
	}
	if path, _ := flags.GetString("output"); path != "" {
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logInfo("written to %s", path)
		return nil
	}
	fmt.Println(out)
	return nil
}

// loadOne reads the single clean input: a file, a URL or stdin.
func loadOne(ctx context.Context, args []string) (string, string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		src := source.String{Label: "stdin", HTML: string(data)}
		html, err := src.Load(ctx)
		return src.Name(), html, err
	}

	var f fetcher.Fetcher
	if source.IsURL(args[0]) {
		var err error
		f, err = fetcher.New(fetcher.Mode(settings.FetchMode), settings.Fetch)
		if err != nil {
			return "", "", err
		}
		defer func() { _ = f.Close() }()
	}
	maxBytes, err := settings.MaxInputBytes()
	if err != nil {
		return "", "", err
	}
	sources, err := source.Expand(args, f, fetcher.Options{}, maxBytes)
	if err != nil {
		return "", "", err
	}
	if len(sources) == 0 {
		return "", "", errors.New("no input found: " + args[0])
	}
	html, err := sources[0].Load(ctx)
	return sources[0].Name(), html, err
}

func writeJSONStats(w io.Writer, name string, result *sanitize.Result, scans, unwraps int) error {
	stats := struct {
		Source   string             `json:"source"`
		Stats    *sanitize.Stats    `json:"stats"`
		Reduced  float64            `json:"reduction_percent"`
		Scans    int                `json:"flatten_scans"`
		Unwraps  int                `json:"flatten_unwraps"`
		Warnings []sanitize.Warning `json:"warnings,omitempty"`
	}{
		Source:   name,
		Stats:    result.Stats,
		Reduced:  result.Stats.ReductionPercent(),
		Scans:    scans,
		Unwraps:  unwraps,
		Warnings: result.Warnings,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func runComparison(root *markup.Node, name string) {
	presets := []string{"default", "marketplace", "minimal"}

	fmt.Printf("\n=== Preset Comparison for %s ===\n", name)
	fmt.Printf("Input nodes: %d\n\n", root.Count())
	fmt.Printf("%-12s %10s %10s %8s %10s\n", "Preset", "Nodes", "Removed", "Reduce%", "Time")
	fmt.Printf("%-12s %10s %10s %8s %10s\n", "------", "-----", "-------", "-------", "----")

	for _, p := range presets {
		cfg, _ := sanitize.Preset(p)
		result := sanitize.New(cfg).SanitizeWithStats(root)
		fmt.Printf("%-12s %10d %10d %7.1f%% %10v\n",
			p,
			result.Stats.OutputNodes,
			result.Stats.TotalElementsRemoved(),
			result.Stats.ReductionPercent(),
			result.Stats.Duration.Round(time.Microsecond))
	}
	fmt.Println()
}
