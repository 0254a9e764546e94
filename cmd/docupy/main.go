package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"docupy/internal/session"
	"docupy/internal/types"
	"docupy/pkg/chat"
	cfgPkg "docupy/pkg/config"
	"docupy/pkg/extract"
	"docupy/pkg/index"
	"docupy/pkg/llm"
	"docupy/pkg/processor"
	"docupy/pkg/server"
	"docupy/pkg/store/disk"
	"docupy/pkg/store/pgvector"
)

func main() {
	godotenv.Load()

	var (
		configPath string
		docPath    string
		serveAddr  string
	)
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&docPath, "doc", "", "Path to the reference document (PDF, HTML or text)")
	flag.StringVar(&serveAddr, "serve", "", "Run the WebSocket server on this address instead of the CLI chat")
	flag.Parse()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if docPath != "" {
		config.Document.Path = docPath
	}

	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		os.Exit(1)
	}

	if err := run(config, serveAddr); err != nil {
		log.Fatal(err)
	}
}

func run(config *cfgPkg.Config, serveAddr string) error {
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     config.LLM.EmbeddingModel,
		APIKey:    config.LLM.APIKey,
		BatchSize: config.Index.BatchSize,
		RateLimit: config.Index.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       config.LLM.Model,
		Temperature: config.LLM.Temperature,
		MaxTokens:   config.LLM.MaxTokens,
		APIKey:      config.LLM.APIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %v", err)
	}

	vectorStore, err := newStore(config)
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %v", err)
	}
	defer vectorStore.Close()

	var buildBar *progressbar.ProgressBar
	idx := index.NewWithConfig(embedder, vectorStore, index.IndexConfig{
		BatchSize: config.Index.BatchSize,
		OnProgress: func(done, total int) {
			if buildBar == nil {
				buildBar = getProgressBar(total, "Embedding chunks...")
			}
			buildBar.Set(done)
		},
	})

	ctx := context.Background()
	loaded, err := idx.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load index: %v", err)
	}

	if loaded {
		color.Green("✓ Index loaded (%d chunks, %s)",
			idx.Manifest().ChunkCount, idx.Manifest().EmbeddingModel)
	} else {
		if config.Document.Path == "" {
			return fmt.Errorf("no index found and no document configured; pass -doc or set document.path")
		}
		if err := ingest(ctx, config, idx); err != nil {
			return fmt.Errorf("ingestion failed: %v", err)
		}
		if buildBar != nil {
			buildBar.Finish()
			fmt.Println()
		}
		color.Green("✓ Index built (%d chunks)", idx.Manifest().ChunkCount)
	}

	engine := chat.NewWithConfig(idx, chatEngine, chat.EngineConfig{
		TopK:     config.Retrieval.TopK,
		MaxTurns: config.History.MaxTurns,
	})

	if serveAddr != "" {
		return server.Run(serveAddr, engine)
	}

	return chatLoop(ctx, engine)
}

// ingest runs the one-time pipeline: extract text, chunk it, build the
// index. Any failure here is fatal; the assistant cannot answer without a
// valid index.
func ingest(ctx context.Context, config *cfgPkg.Config, idx *index.Index) error {
	extractor, err := extract.ForPath(config.Document.Path)
	if err != nil {
		return err
	}

	color.Blue("Building index from %s", config.Document.Path)

	text, err := extractor.Extract(config.Document.Path)
	if err != nil {
		return err
	}

	p := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    config.Processor.ChunkSize,
		ChunkOverlap: config.Processor.ChunkOverlap,
	})
	chunks, err := p.Chunk(text)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("document produced no text")
	}

	return idx.Build(ctx, chunks)
}

func newStore(config *cfgPkg.Config) (types.VectorStore, error) {
	switch config.Index.Backend {
	case "pgvector":
		return pgvector.NewWithConfig(pgvector.StoreConfig{
			ConnString: config.Index.DBUrl,
			TableName:  config.Index.TableName,
			VectorDim:  config.Index.VectorDim,
		})
	default:
		return disk.NewWithConfig(disk.StoreConfig{
			Path: config.Index.Path,
		})
	}
}

func chatLoop(ctx context.Context, engine *chat.Engine) error {
	sess := session.New()

	color.Cyan("\n%s", session.Greeting)
	color.Cyan("\n(type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()
	statsPrompt := color.New(color.Faint).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.ToLower(query) == "exit" {
			break
		}

		sess.AppendUser(query)

		spinner := getSpinner("Searching the document...")
		result := engine.Answer(ctx, query, sess.Transcript())
		spinner.Finish()
		fmt.Print("\r")

		sess.AppendAssistant(result.Answer)
		sess.Usage.Record(result)

		assistantPrompt("DocuPy: %s\n", result.Answer)
		statsPrompt("tokens: %d  cost: $%.6f\n", result.TotalTokens, result.TotalCostUSD)
	}

	totals := sess.Usage.SessionTotals()
	color.Cyan("\nSession totals: %d tokens, $%.6f", totals.TotalTokens, totals.TotalCostUSD)
	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
