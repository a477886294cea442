package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/NewsGoat/internal/config"
	"github.com/IshaanNene/NewsGoat/internal/engine"
	"github.com/IshaanNene/NewsGoat/internal/storage"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

var searchTag string

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the configured RSS feeds into the master store",
		Long: `Read every feed of the sources file, fetch articles published within
the last scrape.days days (DAYS_TO_SCRAPE) that are not cached yet, and
merge them into the master store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(func(ctx context.Context, eng *engine.Engine) error {
				sum, err := eng.Scrape(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("\n✅ Scrape complete in %s\n", sum.Elapsed.Round(time.Millisecond))
				fmt.Printf("   Sources:   %d (%d feeds, %d failed)\n", sum.Sources, sum.Feeds, sum.FeedsFailed)
				fmt.Printf("   Entries:   %d in window, %d cached, %d fetch failures\n", sum.Entries, sum.Cached, sum.FetchFailed)
				fmt.Printf("   Articles:  %d admitted, %d rejected\n", sum.Admitted, sum.Rejected)
				printReasons(sum.Reasons)
				if sum.RawBatch != "" {
					fmt.Printf("   Raw batch: %s\n", sum.RawBatch)
				}
				printMerge(sum.Merge)
				fmt.Printf("   Run:       %s\n", sum.RunID)
				return nil
			})
		},
	}
}

// searchCmd creates the "search" subcommand.
func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Backfill articles from search results",
		Long: `Run the configured search queries, fetch every matching article and
merge the dated ones into the master store. Raw batches are written per
outlet tag and month of publication.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(func(ctx context.Context, eng *engine.Engine) error {
				var sums []*engine.SearchSummary
				if searchTag == "" {
					all, err := eng.SearchAll(ctx)
					sums = all
					if err != nil {
						printSearch(sums)
						return err
					}
				} else {
					q, err := queryByTag(searchTag)
					if err != nil {
						return err
					}
					sum, err := eng.Search(ctx, q)
					if err != nil {
						return err
					}
					sums = append(sums, sum)
				}
				printSearch(sums)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&searchTag, "tag", "t", "", "run only the query with this tag")
	return cmd
}

func queryByTag(tag string) (config.SearchQuery, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.SearchQuery{}, err
	}
	for _, q := range cfg.Search.Queries {
		if q.Tag == tag {
			return q, nil
		}
	}
	return config.SearchQuery{}, fmt.Errorf("no search query tagged %q", tag)
}

func printSearch(sums []*engine.SearchSummary) {
	for _, sum := range sums {
		fmt.Printf("\n✅ Search %q complete in %s\n", sum.Tag, sum.Elapsed.Round(time.Millisecond))
		fmt.Printf("   Results:   %d URLs, %d fetch failures\n", sum.Results, sum.FetchFailed)
		fmt.Printf("   Articles:  %d admitted, %d rejected\n", sum.Admitted, sum.Rejected)
		printReasons(sum.Reasons)
		for _, b := range sum.RawBatches {
			fmt.Printf("   Raw batch: %s\n", b)
		}
		printMerge(sum.Merge)
	}
}

// cleanCmd creates the "clean" subcommand.
func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Admit the master store into the cleaned corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(func(ctx context.Context, eng *engine.Engine) error {
				sum, err := eng.Clean(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("\n✅ Clean complete in %s\n", sum.Elapsed.Round(time.Millisecond))
				fmt.Printf("   Loaded:     %d\n", sum.Loaded)
				fmt.Printf("   Rejected:   %d\n", sum.Rejected)
				printReasons(sum.Reasons)
				fmt.Printf("   Filled:     %d missing fields\n", sum.FieldsFilled)
				fmt.Printf("   Duplicates: %d\n", sum.Duplicates)
				fmt.Printf("   Unique:     %d\n", sum.Unique)
				fmt.Printf("   Written:    %d to %s\n", sum.Written, sum.Output)
				fmt.Printf("   Removed:    %s\n", sum.RemovedLog)
				return nil
			})
		},
	}
}

// recomputeCmd creates the "recompute" subcommand.
func recomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Refresh article ages in the master store against now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(func(ctx context.Context, eng *engine.Engine) error {
				sum, err := eng.Recompute(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("\n✅ Ages recomputed for %d articles (%d without a usable date)\n", sum.Total, sum.Undated)
				return nil
			})
		},
	}
}

// mergeCacheCmd creates the "merge-cache" subcommand.
func mergeCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge-cache [cache.json...]",
		Short: "Fold old article caches into the master store",
		Long: `Combine the given cache files, the first file holding a URL winning,
re-derive clean text and ages, merge the result into the master store and
write one raw batch per publication date.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(func(ctx context.Context, eng *engine.Engine) error {
				sum, err := eng.MergeCaches(ctx, args)
				if err != nil {
					return err
				}
				fmt.Printf("\n✅ Cache merge complete in %s\n", sum.Elapsed.Round(time.Millisecond))
				fmt.Printf("   Caches:    %d (%d distinct articles)\n", sum.Caches, sum.Combined)
				fmt.Printf("   Articles:  %d admitted, %d rejected\n", sum.Admitted, sum.Rejected)
				printReasons(sum.Reasons)
				fmt.Printf("   Raw:       %d daily batches\n", sum.RawBatches)
				printMerge(sum.Merge)
				return nil
			})
		},
	}
}

// analyzeCmd creates the "analyze" subcommand.
func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Report on the cleaned corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(func(ctx context.Context, eng *engine.Engine) error {
				sum, err := eng.Analyze(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("\nCorpus: %s\n", sum.Input)
				fmt.Printf("   Articles:       %d\n", sum.Total)
				fmt.Printf("   Unique dates:   %d\n", sum.UniqueDates)
				if sum.DateMin != "" {
					fmt.Printf("   Date range:     %s to %s\n", sum.DateMin, sum.DateMax)
				}
				fmt.Printf("   Missing titles: %d\n", sum.MissingTitles)
				fmt.Printf("   Missing bodies: %d\n", sum.MissingBodies)
				fmt.Printf("   Sources:        %d\n", sum.UniqueSources)

				fmt.Printf("\nTop sources:\n")
				for _, s := range sum.TopSources {
					fmt.Printf("   %-30s %d\n", s.Source, s.Count)
				}
				fmt.Printf("\nAge bins:\n")
				for _, b := range sum.Bins {
					fmt.Printf("   %-10s %d\n", b.Bin, b.Count)
				}
				fmt.Printf("\nArticles per month:\n")
				for _, m := range sum.Months {
					fmt.Printf("   %s  %d\n", m.Month, m.Count)
				}
				return nil
			})
		},
	}
}

// metadataCmd creates the "metadata" subcommand.
func metadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Export the cleaned corpus as the labelling table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(func(ctx context.Context, eng *engine.Engine) error {
				sum, err := eng.Metadata(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("\n✅ Metadata written: %d rows to %s\n", sum.Rows, sum.Output)
				if len(sum.Skipped) > 0 {
					fmt.Printf("   Skipped %d records:\n", len(sum.Skipped))
					for _, s := range sum.Skipped {
						fmt.Printf("     #%d %s: %v\n", s.Index, s.URL, s.Err)
					}
				}
				return nil
			})
		},
	}
}

func printReasons(reasons map[types.RemoveReason]int) {
	if len(reasons) == 0 {
		return
	}
	keys := make([]string, 0, len(reasons))
	for r := range reasons {
		keys = append(keys, string(r))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("     %-20s %d\n", k, reasons[types.RemoveReason(k)])
	}
}

func printMerge(m storage.MergeResult) {
	if m.Incoming == 0 {
		return
	}
	fmt.Printf("   Master:    %d added, %d replaced, %d duplicates, %d total\n", m.Added, m.Replaced, m.Dropped, m.Total)
}
