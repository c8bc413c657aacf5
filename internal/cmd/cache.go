package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kazem-mohamed/socialhub-app/pkg/metrics"
	"github.com/kazem-mohamed/socialhub-app/pkg/output"
	"github.com/kazem-mohamed/socialhub-app/pkg/session"
	"github.com/spf13/cobra"
)

var cacheWarm bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the session cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached lists and counters for this session",
	Long: `Show what the session cache holds and the counters recorded so far.
With --warm the feed given by --mode is loaded first.`,
	RunE: withSession(func(ctx context.Context, s *session.Session, p *output.Printer, _ []string) error {
		if cacheWarm {
			if _, err := s.Feed.Load(ctx, feedMode); err != nil {
				return err
			}
		}
		return printStats(s, p)
	}),
}

func printStats(s *session.Session, p *output.Printer) error {
	sigs := s.Cache.Signatures("")
	lists := make([][]string, 0, len(sigs))
	for _, sig := range sigs {
		total := "?"
		if n, ok := s.Cache.TotalCount(sig); ok {
			total = strconv.Itoa(n)
		}
		lists = append(lists, []string{s.Cache.Describe(sig), total, fmt.Sprint(s.Cache.HasNextPage(sig))})
	}
	if p.Format != output.FormatJSON {
		p.Info("%d cached list(s)", len(sigs))
	}
	if err := p.Table([]string{"List", "Total", "More"}, lists); err != nil {
		return err
	}

	samples, err := metrics.Summary(s.Registry)
	if err != nil {
		return err
	}
	rows := make([][]string, len(samples))
	for i, smp := range samples {
		rows[i] = []string{smp.Name, smp.Labels, strconv.FormatFloat(smp.Value, 'f', -1, 64)}
	}
	return p.Table([]string{"Metric", "Labels", "Value"}, rows)
}

func init() {
	cacheStatsCmd.Flags().BoolVar(&cacheWarm, "warm", false, "Load a feed before reporting")
	cacheStatsCmd.Flags().StringVarP(&feedMode, "mode", "m", "latest", "Feed mode used with --warm")
	cacheCmd.AddCommand(cacheStatsCmd)
}
