package admin

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/deckray/internal/config"
	"github.com/cloo-solutions/deckray/internal/database"
	"github.com/cloo-solutions/deckray/internal/openai"
	"github.com/cloo-solutions/deckray/internal/repository"
	"github.com/cloo-solutions/deckray/internal/service"
)

// RulesCmd returns the rules command group
func RulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the presentation rule corpus",
	}

	cmd.AddCommand(rulesSeedCmd())

	return cmd
}

func rulesSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load rule documents into the retrieval store",
		Long:  "Read a text file of presentation rules (one per paragraph, separated by blank lines) and store them in the vector collection",
		Args:  cobra.ExactArgs(1),
		RunE:  runRulesSeed,
	}

	return cmd
}

func runRulesSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasDatabase() {
		return fmt.Errorf("DATABASE_URL is required to seed rules")
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required to seed rules")
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read rules file: %w", err)
	}

	docs := splitParagraphs(string(content))
	if len(docs) == 0 {
		return fmt.Errorf("no rule documents found in %s", args[0])
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	rulesRepo, err := repository.NewRulesRepository(pool, cfg.RulesCollection)
	if err != nil {
		return fmt.Errorf("failed to create rules repository: %w", err)
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		RequestTimeout: time.Duration(cfg.InferenceTimeoutSecs) * time.Second,
	})
	retrievalSvc := service.NewRetrievalService(rulesRepo, service.NewEmbeddingService(client))

	if err := retrievalSvc.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize retrieval store: %w", err)
	}

	added, err := retrievalSvc.AddDocuments(ctx, docs, nil)
	if err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	log.Printf("seeded %d rule documents into %s", added, cfg.RulesCollection)
	return nil
}

func splitParagraphs(text string) []string {
	parts := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	docs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			docs = append(docs, p)
		}
	}
	return docs
}
