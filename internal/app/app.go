package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"

	"ticketbot/internal/classifier"
	"ticketbot/internal/composer"
	"ticketbot/internal/config"
	"ticketbot/internal/domain"
	"ticketbot/internal/embedding"
	"ticketbot/internal/httpx"
	"ticketbot/internal/knowledge"
	"ticketbot/internal/llm"
	"ticketbot/internal/notify"
	"ticketbot/internal/processor"
	"ticketbot/internal/retrieval"
	"ticketbot/internal/storage/sqlite"
	"ticketbot/internal/ticketdata"
	"ticketbot/internal/vectordb"
)

const usage = `Usage: ticketbot <command> [flags]

Commands:
  ingest       Build per-category knowledge collections from sheet files
  respond      Resolve a batch of tickets and persist result rows
  collections  List knowledge collections with record counts
`

func Main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "ingest":
		runIngest(os.Args[2:])
	case "respond":
		runRespond(os.Args[2:])
	case "collections":
		runCollections(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
}

func newClients(cfg config.Config) (*embedding.Client, *vectordb.Client) {
	timeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf("Clients configured. EmbeddingURL=%s EmbeddingModel=%s Dim=%d VectorDBURL=%s HTTPTimeout=%s",
		cfg.EmbeddingURL, cfg.EmbeddingModel, cfg.EmbeddingDim, cfg.VectorDBURL, timeout)

	embedder := embedding.NewClient(embedding.Config{
		BaseURL:   cfg.EmbeddingURL,
		APIKey:    cfg.EmbeddingAPIKey,
		Model:     cfg.EmbeddingModel,
		Dimension: cfg.EmbeddingDim,
		HTTP:      httpx.Client(),
	})
	store := vectordb.NewClient(vectordb.Config{
		BaseURL: cfg.VectorDBURL,
		APIKey:  cfg.VectorDBAPIKey,
		HTTP:    httpx.Client(),
	})
	return embedder, store
}

func runIngest(args []string) {
	fs := pflag.NewFlagSet("ingest", pflag.ExitOnError)
	kbDir := fs.String("kb-dir", "", "directory of knowledge sheet CSV files (default from config)")
	refreshCron := fs.String("refresh-cron", "", "cron spec for scheduled re-ingestion; empty runs once")
	_ = fs.Parse(args)

	cfg := config.LoadConfig()
	if *kbDir == "" {
		*kbDir = cfg.KBDir
	}

	embedder, store := newClients(cfg)
	index := knowledge.NewIndex(embedder, store, classifier.DefaultSanitizationTable(), cfg.MaxFieldLen)

	ingest := func() {
		if err := index.IngestDir(context.Background(), *kbDir); err != nil {
			log.Printf("ingest error: %v", err)
		}
	}

	log.Printf("Starting knowledge ingestion dir=%s", *kbDir)
	if err := index.IngestDir(context.Background(), *kbDir); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	if *refreshCron == "" {
		return
	}
	c := cron.New()
	if _, err := c.AddFunc(*refreshCron, ingest); err != nil {
		log.Fatalf("invalid refresh cron spec '%s': %v", *refreshCron, err)
	}
	log.Printf("Scheduled knowledge refresh cron=%q", *refreshCron)
	c.Start()
	select {}
}

func runRespond(args []string) {
	fs := pflag.NewFlagSet("respond", pflag.ExitOnError)
	input := fs.String("input", "", "batch input CSV (ticket, subject, email_body)")
	resume := fs.Bool("resume", false, "skip tickets already present in the result store")
	_ = fs.Parse(args)

	if *input == "" {
		log.Fatalf("respond requires --input")
	}

	cfg := config.LoadConfig()
	if cfg.AnthropicAPIKey == "" {
		log.Fatalf("Required config 'anthropic_api_key' is not set (via config.yaml or env var)")
	}

	tickets, err := processor.LoadBatch(*input)
	if err != nil {
		log.Fatalf("Batch input error: %v", err)
	}

	rows, err := ticketdata.Load(cfg.TicketDBPath)
	if err != nil {
		log.Fatalf("Ticket metadata error: %v", err)
	}

	db, err := sqlite.InitDB(cfg.ResultsDBPath)
	if err != nil {
		log.Fatalf("Failed to init result store: %v", err)
	}
	defer db.Close()

	templates := map[string]string{}
	if cfg.TemplatesPath != "" {
		templates, err = composer.LoadTemplates(cfg.TemplatesPath)
		if err != nil {
			log.Fatalf("invalid templates_path '%s': %v", cfg.TemplatesPath, err)
		}
		log.Printf("Loaded %d fallback templates from %s", len(templates), cfg.TemplatesPath)
	}

	embedder, store := newClients(cfg)
	table := classifier.DefaultSanitizationTable()

	proc := processor.New(processor.Config{
		Classifier: classifier.New(rows, table),
		Rows:       rows,
		Retriever:  retrieval.NewEngine(embedder, store, table, cfg.RetrievalTopK),
		Composer: composer.New(llm.NewClient(cfg.AnthropicAPIKey, cfg.LLMModel), composer.Config{
			Templates: templates,
			Options: domain.GenerationOptions{
				MaxTokens:   cfg.LLMMaxTokens,
				Temperature: cfg.LLMTemperature,
				TopP:        cfg.LLMTopP,
				TopK:        cfg.LLMTopK,
			},
			MaxAttempts: cfg.LLMRetries,
			BackoffBase: backoffBase(cfg),
		}),
		DB:                db,
		SnapshotPath:      cfg.ResultsCSVPath,
		SkipCategories:    cfg.SkipCategories,
		CategoryAliases:   cfg.CategoryAliases,
		StatusAliases:     cfg.StatusAliases,
		SanitizationTable: table,
	})

	log.Printf("Starting batch input=%s tickets=%d resume=%v", *input, len(tickets), *resume)
	results, err := proc.Run(context.Background(), tickets, *resume)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}

	summary := notify.BatchSummary{Input: *input, Total: len(results)}
	for _, r := range results {
		switch r.Source {
		case "generated", "no_knowledge":
			summary.Generated++
		case "template":
			summary.Templated++
		case "skipped":
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	log.Printf("Batch complete total=%d generated=%d templated=%d skipped=%d failed=%d snapshot=%s",
		summary.Total, summary.Generated, summary.Templated, summary.Skipped, summary.Failed, cfg.ResultsCSVPath)

	notify.New(cfg.SlackBotToken, cfg.SlackChannelID).PostBatchSummary(summary)
}

func runCollections(args []string) {
	fs := pflag.NewFlagSet("collections", pflag.ExitOnError)
	sample := fs.Int("sample", 0, "print up to N stored subjects per collection")
	_ = fs.Parse(args)

	cfg := config.LoadConfig()
	_, store := newClients(cfg)

	names, err := store.ListCollections(context.Background())
	if err != nil {
		log.Fatalf("Listing collections failed: %v", err)
	}
	for _, name := range names {
		count, err := store.Count(context.Background(), name)
		if err != nil {
			log.Printf("collection=%s count error: %v", name, err)
			continue
		}
		fmt.Printf("%s\t%d\n", name, count)

		if *sample <= 0 {
			continue
		}
		points, err := store.Query(context.Background(), name, *sample)
		if err != nil {
			log.Printf("collection=%s sample error: %v", name, err)
			continue
		}
		for _, p := range points {
			fmt.Printf("  %d\t%s\n", p.ID, p.Fields[knowledge.ColSubject])
		}
	}
}

func backoffBase(cfg config.Config) time.Duration {
	return time.Duration(cfg.LLMBackoffSeconds) * time.Second
}
