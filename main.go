// Command project-ingestor pulls research and development project data
// from the configured sources, normalizes it, and upserts it into
// PostgreSQL.
//
// Usage:
//
//	project-ingestor -all                     load every configured source
//	project-ingestor -source nih              load one source
//	project-ingestor -source undp -input f.json   override the input
//	project-ingestor -misc                    load the ad-hoc local datasets
//	project-ingestor -counts                  print stored counts per source
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/adapter"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/config"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/events"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/fetch"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/loader"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", config.GetConfigPath("config.yaml"), "path to config file")
		sourceName = flag.String("source", "", "load a single source by name")
		input      = flag.String("input", "", "override the source's input file or URL")
		all        = flag.Bool("all", false, "load every configured source")
		misc       = flag.Bool("misc", false, "load the ad-hoc local datasets")
		counts     = flag.Bool("counts", false, "print stored project counts per source")
	)
	flag.Parse()

	if !*all && !*misc && !*counts && *sourceName == "" {
		return fmt.Errorf("nothing to do: pass -all, -misc, -counts, or -source <name>")
	}

	app, err := bootstrap.New(*configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	var summaries []*loader.Summary

	if *all || *sourceName != "" {
		sources, resolveErr := resolveSources(app.Config, *sourceName, *input)
		if resolveErr != nil {
			return resolveErr
		}
		for _, src := range sources {
			summary, loadErr := loadSource(ctx, app, src)
			if loadErr != nil {
				return loadErr
			}
			summaries = append(summaries, summary)
		}
	}

	if *all || *misc {
		miscSummaries, miscErr := app.Importer.Run(ctx)
		if miscErr != nil {
			return miscErr
		}
		summaries = append(summaries, miscSummaries...)
	}

	if *all || *misc || *sourceName != "" {
		report(app, summaries)
	}

	if *counts {
		stored, countErr := app.Projects.CountBySource(ctx)
		if countErr != nil {
			return countErr
		}
		writeCounts(os.Stdout, stored)
	}
	return nil
}

// writeCounts prints the per-source row counts, sorted by source label so
// successive runs diff cleanly.
func writeCounts(w io.Writer, counts map[string]int) {
	sources := make([]string, 0, len(counts))
	total := 0
	for source, count := range counts {
		sources = append(sources, source)
		total += count
	}
	sort.Strings(sources)

	for _, source := range sources {
		fmt.Fprintf(w, "%-28s %d\n", source, counts[source])
	}
	fmt.Fprintf(w, "%-28s %d\n", "total", total)
}

// resolveSources selects the configured sources to run. Naming a source not
// present in the config is allowed as long as an input override is given.
func resolveSources(cfg *config.Config, name, input string) ([]config.SourceConfig, error) {
	if name == "" {
		return cfg.Sources, nil
	}

	for _, src := range cfg.Sources {
		if strings.EqualFold(src.Name, name) {
			if input != "" {
				src.Input = input
			}
			return []config.SourceConfig{src}, nil
		}
	}

	if input == "" {
		return nil, fmt.Errorf("source %q is not configured and no -input was given", name)
	}
	return []config.SourceConfig{{Name: name, Input: input}}, nil
}

func loadSource(ctx context.Context, app *bootstrap.App, src config.SourceConfig) (*loader.Summary, error) {
	spec, ok := adapter.Lookup(src.Name)
	if !ok {
		return nil, fmt.Errorf("unknown source %q (known: %s)",
			src.Name, strings.Join(adapter.Names(), ", "))
	}
	if src.Input == "" {
		return nil, fmt.Errorf("source %q has no input configured", src.Name)
	}

	records, err := readInput(ctx, app, src)
	if err != nil {
		return nil, fmt.Errorf("read input for %s: %w", src.Name, err)
	}

	summary, err := app.Loader.Load(ctx, spec, records)
	if err != nil {
		return nil, err
	}

	app.Publisher.PublishAsync(events.EventSourceLoaded, map[string]any{
		"source":    summary.Source,
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
	})
	return summary, nil
}

func readInput(ctx context.Context, app *bootstrap.App, src config.SourceConfig) ([]adapter.RawRecord, error) {
	if strings.HasPrefix(src.Input, "http://") || strings.HasPrefix(src.Input, "https://") {
		return app.NewFetchClient(src).GetRecords(ctx, src.Input)
	}
	if strings.EqualFold(filepath.Ext(src.Input), ".csv") {
		return fetch.ReadCSVRecords(src.Input)
	}
	return fetch.ReadJSONRecords(src.Input)
}

func report(app *bootstrap.App, summaries []*loader.Summary) {
	total := loader.Summary{}
	for _, s := range summaries {
		total.Total += s.Total
		total.Succeeded += s.Succeeded
		total.Failed += s.Failed
		total.Skipped += s.Skipped
		fmt.Printf("%-28s total=%-6d ok=%-6d failed=%-5d skipped=%d\n",
			s.Source, s.Total, s.Succeeded, s.Failed, s.Skipped)
	}

	app.Logger.Info("Ingestion run complete",
		logger.Int("sources", len(summaries)),
		logger.Int("total", total.Total),
		logger.Int("succeeded", total.Succeeded),
		logger.Int("failed", total.Failed),
		logger.Int("skipped", total.Skipped),
	)
	app.Publisher.PublishAsync(events.EventBatchCompleted, map[string]any{
		"sources":   len(summaries),
		"total":     total.Total,
		"succeeded": total.Succeeded,
		"failed":    total.Failed,
		"skipped":   total.Skipped,
	})
}
