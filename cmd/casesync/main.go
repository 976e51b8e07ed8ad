// Copyright 2025 Arbor Health Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"

	"github.com/arborhealth/casesync"
	"github.com/arborhealth/casesync/ai"
	"github.com/arborhealth/casesync/backfill"
	"github.com/arborhealth/casesync/docembed"
	"github.com/arborhealth/casesync/helpdesk"
	"github.com/arborhealth/casesync/search"
)

func main() {
	connectionFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
			EnvVars:  []string{"CASESYNC_DB"},
		},
		&cli.StringFlag{
			Name:    "helpdesk-domain",
			Usage:   "Helpdesk account domain (e.g. acme or acme.freshdesk.com)",
			EnvVars: []string{"CASESYNC_HELPDESK_DOMAIN"},
		},
		&cli.StringFlag{
			Name:    "helpdesk-api-key",
			Usage:   "Helpdesk API key",
			EnvVars: []string{"CASESYNC_HELPDESK_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"CASESYNC_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"CASESYNC_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "docproc-url",
			Usage:   "Document processing service base URL (empty disables attachment processing)",
			EnvVars: []string{"CASESYNC_DOCPROC_URL"},
		},
	}

	app := &cli.App{
		Name:  "casesync",
		Usage: "Helpdesk case ingestion and medical document knowledge extraction",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import all companies and tickets from the helpdesk",
				Action: importCommand,
				Flags: append([]cli.Flag{
					&cli.TimestampFlag{
						Name:   "since",
						Usage:  "Only import tickets updated at or after this time (RFC 3339)",
						Layout: time.RFC3339,
					},
				}, connectionFlags...),
			},
			{
				Name:      "sync-ticket",
				Usage:     "Sync a single ticket by its helpdesk id",
				ArgsUsage: "<ticket-id>",
				Action:    syncTicketCommand,
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "attachments",
						Usage: "Process the ticket's attachments after syncing",
						Value: true,
					},
				}, connectionFlags...),
			},
			{
				Name:   "backfill",
				Usage:  "Process attachments for every previously imported ticket",
				Action: backfillCommand,
				Flags: append([]cli.Flag{
					&cli.DurationFlag{
						Name:  "ticket-delay",
						Usage: "Pause between tickets",
						Value: 2 * time.Second,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N tickets",
						Value: 10,
					},
					&cli.DurationFlag{
						Name:  "attachment-delay",
						Usage: "Pause between attachments of the same ticket",
						Value: 500 * time.Millisecond,
					},
				}, connectionFlags...),
			},
			{
				Name:      "search",
				Usage:     "Search extracted document text by semantic similarity",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum cosine similarity for a match",
						Value: float64(search.DefaultMinSimilarity),
					},
				}, connectionFlags...),
			},
			{
				Name:   "status",
				Usage:  "Show the configured helpdesk connection",
				Action: statusCommand,
				Flags:  connectionFlags,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openSystem(c *cli.Context) (*casesync.System, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	helpdeskConfig := helpdesk.NewConfig(
		helpdesk.WithDomain(c.String("helpdesk-domain")),
		helpdesk.WithAPIKey(c.String("helpdesk-api-key")),
	)
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	system, err := casesync.NewSystem(dbPath,
		casesync.WithHelpdeskConfig(helpdeskConfig),
		casesync.WithAIConfig(aiConfig),
		casesync.WithDocprocURL(c.String("docproc-url")),
		casesync.WithSystemLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open system: %w", err)
	}
	return system, nil
}

func importCommand(c *cli.Context) error {
	ctx := context.Background()

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	imp, err := system.NewImporter()
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}

	since := c.Timestamp("since")

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	if since != nil {
		fmt.Fprintf(os.Stderr, "Importing tickets updated since %s\n", since.Format(time.RFC3339))
	}
	fmt.Fprintln(os.Stderr)

	result, err := imp.ImportAll(ctx, since)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Companies fetched:   %d\n", result.CompaniesFetched)
	fmt.Printf("Companies persisted: %d\n", result.CompaniesPersisted)
	fmt.Printf("Tickets fetched:     %d\n", result.TicketsFetched)
	fmt.Printf("Cases persisted:     %d\n", result.CasesPersisted)
	fmt.Printf("Unmapped tickets:    %d\n", len(result.Unmapped))
	fmt.Printf("Average age (days):  %.1f\n", result.AverageAgeDays)
	for status, count := range result.StatusCounts {
		fmt.Printf("  %-16s %d\n", status, count)
	}
	if len(result.Errors) > 0 {
		fmt.Printf("Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
	return nil
}

func syncTicketCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("exactly one ticket id is required")
	}
	ticketID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ticket id %q: %w", c.Args().First(), err)
	}

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	service, err := system.NewWebhookService()
	if err != nil {
		return fmt.Errorf("failed to create sync service: %w", err)
	}
	defer service.Release()

	result := service.HandleTicketEvent(ctx, ticketID, c.Bool("attachments"))
	if !result.OK {
		return fmt.Errorf("sync failed: %s", result.Reason)
	}

	fmt.Printf("Ticket %d synced to case %d\n", ticketID, result.CaseId)
	return nil
}

func backfillCommand(c *cli.Context) error {
	ctx := context.Background()

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	config := &backfill.Config{
		TicketDelay:    c.Duration("ticket-delay"),
		ReportInterval: c.Int("report-interval"),
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	backfiller, err := system.NewBackfiller(config, os.Stderr,
		docembed.WithAttachmentDelay(c.Duration("attachment-delay")))
	if err != nil {
		return fmt.Errorf("failed to create backfiller: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintln(os.Stderr)

	result, err := backfiller.Run(ctx)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	fmt.Printf("Tickets:     %d\n", result.Tickets)
	fmt.Printf("Attachments: %d\n", result.Attachments)
	fmt.Printf("Qualified:   %d\n", result.Qualified)
	fmt.Printf("Processed:   %d\n", result.Processed)
	fmt.Printf("Chunks:      %d\n", result.Chunks)
	if len(result.Errors) > 0 {
		fmt.Printf("Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("a search query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	searcher, err := system.NewSearcher(
		search.WithMinSimilarity(float32(c.Float64("min-similarity"))))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.Search(ctx, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s (chunk %d)\n", i+1, r.Score, r.Chunk.Filename, r.Chunk.Index)
		if r.Case != nil {
			fmt.Printf("   Case %d: %s\n", r.Case.Id, r.Case.Subject)
		}
		fmt.Printf("   %s\n", r.Chunk.Text)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	status := system.HelpdeskStatus()
	if status.Connected {
		fmt.Printf("Helpdesk: configured (%s)\n", status.Domain)
	} else {
		fmt.Printf("Helpdesk: not configured (%s)\n", status.Error)
	}
	fmt.Printf("Embedding host:  %s\n", c.String("embedding-host"))
	fmt.Printf("Embedding model: %s\n", c.String("embedding-model"))
	if url := c.String("docproc-url"); url != "" {
		fmt.Printf("Document processor: %s\n", url)
	} else {
		fmt.Println("Document processor: not configured")
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
	}))
	slog.SetDefault(logger)

	return nil
}
