// Package app wires the application together: Genkit, the vector store, the
// RAG engine with its web fallback, the tool registry and the agent. Each
// dependency is built by a small provide function so the graph stays explicit
// and each piece remains independently constructible in tests.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"golang.org/x/time/rate"

	"github.com/sagekit/sage/internal/agent"
	"github.com/sagekit/sage/internal/config"
	"github.com/sagekit/sage/internal/knowledge"
	"github.com/sagekit/sage/internal/log"
	"github.com/sagekit/sage/internal/mail"
	"github.com/sagekit/sage/internal/rag"
	"github.com/sagekit/sage/internal/tools"
	"github.com/sagekit/sage/internal/websearch"
)

// Model calls are paced to stay under free-tier quotas.
const modelCallInterval = time.Second

// App holds the composed application.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit  *genkit.Genkit
	Store   *knowledge.Store
	Indexer *rag.Indexer
	Engine  *rag.Engine
	Agent   *agent.Agent
}

// Setup builds the full application graph. It requires the Gemini API key;
// the email tool is only registered when the email provider is configured.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if err := cfg.RequireGeminiKey(); err != nil {
		return nil, err
	}

	g, err := provideGenkit(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := provideStore(g, cfg, logger)
	if err != nil {
		return nil, err
	}

	indexer, err := provideIndexer(store, cfg, logger)
	if err != nil {
		return nil, err
	}

	generator, err := rag.NewGenkitGenerator(g, cfg.ModelName)
	if err != nil {
		return nil, err
	}

	web, err := provideWebPath(generator, cfg, logger)
	if err != nil {
		return nil, err
	}

	engine, err := provideEngine(store, generator, web, cfg, logger)
	if err != nil {
		return nil, err
	}

	agentLoop, err := provideAgent(g, cfg, engine, web, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Genkit:  g,
		Store:   store,
		Indexer: indexer,
		Engine:  engine,
		Agent:   agentLoop,
	}, nil
}

// provideGenkit initializes Genkit with the Google AI plugin.
func provideGenkit(ctx context.Context, cfg *config.Config) (*genkit.Genkit, error) {
	g := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: cfg.GeminiAPIKey}),
	)
	if g == nil {
		return nil, fmt.Errorf("failed to initialize Genkit")
	}
	return g, nil
}

// provideEmbedder resolves the embedding model.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
}

// provideStore opens the persistent vector store.
func provideStore(g *genkit.Genkit, cfg *config.Config, logger log.Logger) (*knowledge.Store, error) {
	embedder := provideEmbedder(g, cfg)
	return knowledge.Open(cfg.StorePath, cfg.Collection, knowledge.NewEmbeddingFunc(embedder), logger)
}

// provideIndexer builds the corpus indexer.
func provideIndexer(store *knowledge.Store, cfg *config.Config, logger log.Logger) (*rag.Indexer, error) {
	splitter, err := knowledge.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	return rag.NewIndexer(store, splitter, logger)
}

// provideWebPath builds the live web-retrieval pipeline.
func provideWebPath(generator rag.Generator, cfg *config.Config, logger log.Logger) (*websearch.Path, error) {
	return websearch.NewPath(websearch.PathConfig{
		Searcher:   websearch.NewDuckDuckGo(),
		Fetcher:    websearch.NewReadabilityFetcher(time.Duration(cfg.Scraper.TimeoutMs) * time.Millisecond),
		Generator:  generator,
		MaxResults: cfg.SearchMaxResults,
		Logger:     logger,
	})
}

// provideEngine builds the RAG engine with web fallback.
func provideEngine(store *knowledge.Store, generator rag.Generator, web rag.WebFallback, cfg *config.Config, logger log.Logger) (*rag.Engine, error) {
	retriever, err := rag.NewRetriever(store, cfg.TopK, logger)
	if err != nil {
		return nil, err
	}
	synth, err := rag.NewSynthesizer(generator, cfg.SimilarityCutoff, logger)
	if err != nil {
		return nil, err
	}
	trigger, err := rag.NewTrigger(cfg.MarkerPhrases)
	if err != nil {
		return nil, err
	}
	return rag.NewEngine(retriever, synth, trigger, web, logger)
}

// provideAgent builds the tool registry and the bounded agent loop. The
// email tool is skipped when no provider is configured, so the agent still
// answers questions without email credentials.
func provideAgent(g *genkit.Genkit, cfg *config.Config, engine *rag.Engine, web *websearch.Path, logger log.Logger) (*agent.Agent, error) {
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewQueryDocumentsTool(engine)); err != nil {
		return nil, err
	}
	if err := registry.Register(tools.NewWebSearchTool(web)); err != nil {
		return nil, err
	}

	if cfg.RequireEmailKey() == nil {
		sender, err := mail.NewSendGridSender(cfg.Email.APIKey, cfg.Email.Sender, logger)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(tools.NewSendEmailTool(sender)); err != nil {
			return nil, err
		}
	} else {
		logger.Debug("email provider not configured, send_email tool disabled")
	}

	handles, err := tools.DefineAll(g, registry)
	if err != nil {
		return nil, err
	}

	reasoner, err := agent.NewGenkitReasoner(g, cfg.ModelName, handles)
	if err != nil {
		return nil, err
	}

	return agent.New(agent.Config{
		Reasoner: reasoner,
		Registry: registry,
		MaxTurns: cfg.MaxTurns,
		Limiter:  rate.NewLimiter(rate.Every(modelCallInterval), 1),
		Logger:   logger,
	})
}
