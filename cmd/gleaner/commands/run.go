package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/gleaner/internal/config"
	"github.com/jmylchreest/gleaner/internal/logger"
	"github.com/jmylchreest/gleaner/pkg/extract/catalog"
	"github.com/jmylchreest/gleaner/pkg/extract/news"
	"github.com/jmylchreest/gleaner/pkg/gleaner"
)

var runCmd = &cobra.Command{
	Use:   "run <job-file>",
	Short: "Run the jobs described in a YAML or JSON file",
	Long: `Run every job of a job file in order. A failing job is reported and
the remaining jobs still run.

Job file:
  jobs:
    - name: kettles
      kind: catalog          # catalog, news or subsidy
      shape: list            # catalog only: list or product
      category: kettle
      inputs: ["dumps/catalog_*.txt"]
      output: {path: out/kettles.xlsx}
      store: seen.db
    - name: tesla-naver
      kind: news
      site: naver            # news only: naver or investing
      fetch: dynamic
      next: "a.btn_next"     # follow result pages
      max_pages: 3
      inputs: ["https://search.naver.com/search.naver?where=news&query=tesla"]

Examples:
  gleaner run jobs.yaml
  gleaner run jobs.yaml --only kettles`,
	Args: cobra.ExactArgs(1),
	RunE: runJobs,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSlice("only", nil, "run only the named jobs")
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	jobs, err := config.LoadJobs(args[0])
	if err != nil {
		return err
	}
	only, _ := cmd.Flags().GetStringSlice("only")

	var errs []error
	for _, job := range jobs.Jobs {
		if len(only) > 0 && !slices.Contains(only, job.Name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Info("running job", "job", job.Name, "kind", job.Kind, "inputs", len(job.Inputs))
		if err := runJob(ctx, job); err != nil {
			logError("job %s: %v", job.Name, err)
			errs = append(errs, fmt.Errorf("job %s: %w", job.Name, err))
		}
	}
	return errors.Join(errs...)
}

func runJob(ctx context.Context, job config.Job) error {
	g, cleanup, err := openPipeline(pipelineOptions{
		FetchMode: job.Fetch,
		Store:     job.Store,
		Origin:    job.Origin,
		Category:  job.Category,
		Next:      job.Next,
		MaxPages:  job.MaxPages,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	out := job.Output
	switch job.Kind {
	case config.KindCatalog:
		shape, err := catalog.ParseShape(job.Shape)
		if err != nil {
			return err
		}
		report, err := g.Catalog(ctx, job.Inputs, shape)
		if err != nil {
			return err
		}
		if err := summarize(job.Name, report); err != nil {
			return err
		}
		return writeOutput(out.Path, out.Format, gleaner.KindCatalog, report.Records)

	case config.KindNews:
		site, err := news.ParseSite(job.Site)
		if err != nil {
			return err
		}
		report, err := g.News(ctx, gleaner.NewsBatch{Site: site, Inputs: job.Inputs})
		if err != nil {
			return err
		}
		if err := summarize(job.Name, report); err != nil {
			return err
		}
		return writeOutput(out.Path, out.Format, gleaner.KindNews, report.Records)

	case config.KindSubsidy:
		report, err := g.Subsidy(ctx, job.Inputs)
		if err != nil {
			return err
		}
		if err := summarize(job.Name, report); err != nil {
			return err
		}
		return writeOutput(out.Path, out.Format, kindSubsidy, report.Records)

	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownKind, job.Kind)
	}
}
