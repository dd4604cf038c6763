package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/gleaner/pkg/extract/news"
	"github.com/jmylchreest/gleaner/pkg/gleaner"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Merge articles from news search result pages",
	Long: `Extract articles from Naver and Investing.com search result pages,
keep the first article per title and sort them newest first.

Relative times such as "17분 전" are resolved against the current time.

Examples:
  gleaner news --naver naver.html --investing investing.html
  gleaner news --naver 'https://search.naver.com/search.naver?where=news&query=tesla' -f yaml`,
	Args: cobra.NoArgs,
	RunE: runNews,
}

func init() {
	rootCmd.AddCommand(newsCmd)

	flags := newsCmd.Flags()
	flags.StringSlice("naver", nil, "Naver result pages (files, globs or URLs)")
	flags.StringSlice("investing", nil, "Investing.com result pages (files, globs or URLs)")
}

func runNews(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var batches []gleaner.NewsBatch
	for _, site := range []news.Site{news.SiteNaver, news.SiteInvesting} {
		inputs, _ := cmd.Flags().GetStringSlice(string(site))
		if len(inputs) > 0 {
			batches = append(batches, gleaner.NewsBatch{Site: site, Inputs: inputs})
		}
	}
	if len(batches) == 0 {
		return errors.New("at least one of --naver or --investing is required")
	}

	g, cleanup, err := openPipeline(pipelineOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := g.News(ctx, batches...)
	if err != nil {
		return err
	}
	if err := summarize(gleaner.KindNews, report); err != nil {
		return err
	}

	path, format := outputFlags(cmd)
	return writeOutput(path, format, gleaner.KindNews, report.Records)
}
