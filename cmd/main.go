package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"smart-librarian/internal/chromemdb"
	"smart-librarian/internal/config"
	"smart-librarian/internal/embedding"
	"smart-librarian/internal/helper"
	"smart-librarian/internal/hyde"
	"smart-librarian/internal/ingest"
	"smart-librarian/internal/librarian"
	"smart-librarian/internal/llmservice"
	"smart-librarian/internal/parser"
	"smart-librarian/internal/rag"
	"smart-librarian/internal/safety"
	"smart-librarian/internal/server"
	"smart-librarian/internal/speech"
	"smart-librarian/internal/tokens"
	"smart-librarian/internal/tui"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the YAML config file")
	reset := flag.Bool("reset", false, "Drop and recreate the collection before ingesting")
	dryRun := flag.Bool("dry-run", false, "Dry run, parse the PDFs and print the chunks without storing them")
	skipIngest := flag.Bool("skip-ingest", false, "Use the existing collection without ingesting")
	query := flag.String("query", "", "Question to be answered once, then exit")
	useHyDE := flag.Bool("hyde", false, "Enrich the retrieval query with a hypothetical answer")
	speak := flag.Bool("speak", false, "Read the answer aloud")
	useTUI := flag.Bool("tui", false, "Start the terminal UI instead of the web UI")
	flag.Parse()

	// a missing .env is fine, the environment may already carry the key
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if err := helper.CreateFolder(cfg.Ingest.DataDir); err != nil {
		log.Fatal().Err(err).Msg("Error creating data folder")
	}

	if *dryRun {
		printChunks(cfg)
		return
	}

	if _, err := cfg.APIKey(); err != nil {
		log.Fatal().Err(err).Msg("Missing API key")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib := buildLibrarian(ctx, cfg, *reset || cfg.Ingest.Reset, *skipIngest)

	switch {
	case *query != "":
		askOnce(ctx, lib, librarian.Request{Question: *query, UseHyDE: *useHyDE, ReadAloud: *speak})
	case *useTUI:
		if err := tui.Run(ctx, lib); err != nil {
			log.Fatal().Err(err).Msg("Error running terminal UI")
		}
	default:
		serve(ctx, cfg, lib)
	}
}

// buildLibrarian opens the store, ingests the data folder unless skipped and
// wires the search pipeline behind the safety gate.
func buildLibrarian(ctx context.Context, cfg *config.Config, reset, skipIngest bool) *librarian.Librarian {
	if err := helper.CreateFolder(cfg.Store.Path); err != nil {
		log.Fatal().Err(err).Msg("Error creating store folder")
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	store, err := chromemdb.NewVectorDBManager(cfg.Store.Path, cfg.Store.Collection, cfg.Store.Compress, embedding.NewEmbeddingFunc(embedder))
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector database manager")
	}

	if !skipIngest {
		ingestor := ingest.NewIngestor(parser.NewParser(cfg), store, cfg.Ingest.DataDir)
		if _, err := ingestor.Ingest(ctx, reset); err != nil {
			log.Fatal().Err(err).Msg("Error ingesting documents")
		}
	}
	log.Info().Int("documents", store.Count()).Msg("Vector collection ready")

	llm, err := llmservice.NewLLM(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing LLM")
	}

	search := rag.NewRAG(store, hyde.NewGenerator(llm), llm,
		rag.WithTopK(cfg.RAG.TopK),
		rag.WithTokenCounter(tokens.Counter(cfg.LLM.Model)),
	)
	filter := safety.NewFilter(cfg.Safety.DisallowedWords,
		safety.NewModerationClient(cfg.Safety.ModerationURL, cfg.LLM.Key, cfg.Safety.ModerationModel))
	speaker := speech.NewSynthesizer(cfg.Speech.Command, cfg.Speech.Output)

	return librarian.NewLibrarian(search, filter, speaker)
}

func printChunks(cfg *config.Config) {
	ingestor := ingest.NewIngestor(parser.NewParser(cfg), nil, cfg.Ingest.DataDir)
	files, err := ingestor.PDFFiles()
	if err != nil {
		log.Fatal().Err(err).Msg("Error listing PDF files")
	}
	for _, file := range files {
		chunks, err := ingestor.ChunkFile(file)
		if err != nil {
			log.Fatal().Err(err).Str("file", file).Msg("Error parsing document")
		}
		log.Info().Str("file", file).Int("chunks", len(chunks)).Msg("Parsed content")
		helper.PrettyPrint(chunks)
	}
}

func askOnce(ctx context.Context, lib *librarian.Librarian, req librarian.Request) {
	resp, err := lib.Ask(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", req.Question)

	if resp.Blocked {
		log.Warn().Msg("Blocked: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		for _, reason := range resp.Reasons {
			fmt.Printf("- %s\n", reason)
		}
		return
	}

	if resp.Hypothetical != "" {
		log.Info().Msg("HyDE: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		fmt.Printf("%s\n\n", resp.Hypothetical)
	}

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", resp.Answer)

	if resp.AudioPath != "" {
		log.Info().Str("path", resp.AudioPath).Msg("Audio saved")
	}
}

func serve(ctx context.Context, cfg *config.Config, lib *librarian.Librarian) {
	srv := server.NewServer(lib, cfg.Speech.Output)
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Error stopping web UI")
		}
	}()
	if err := srv.Listen(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Error running web UI")
	}
}
