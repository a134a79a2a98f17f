// Package relay provides the completion relay: it prepends the persona to a
// client conversation, streams the provider's reply back as plain text and
// records finished exchanges as content-addressed transcripts.
package relay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/entropy/pkg/completion"
	"github.com/papercomputeco/entropy/pkg/config"
	"github.com/papercomputeco/entropy/pkg/llm"
	"github.com/papercomputeco/entropy/pkg/logger"
	"github.com/papercomputeco/entropy/pkg/merkle"
)

// ProviderFactory builds a request-scoped provider handle from the live
// provider configuration.
type ProviderFactory func(cfg config.ProviderConfig) (llm.Provider, error)

// OpenAIFactory is the default ProviderFactory.
func OpenAIFactory(cfg config.ProviderConfig) (llm.Provider, error) {
	p, err := completion.NewOpenAIProvider(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Relay is the completion relay server. It keeps no per-conversation state:
// every request carries its whole history.
type Relay struct {
	configs     *config.Store
	storer      merkle.Storer
	newProvider ProviderFactory
	logger      *zap.Logger
	server      *fiber.App
}

// New creates a new Relay using the transcript storage named by the current config.
func New(configs *config.Store, newProvider ProviderFactory, logger *zap.Logger) (*Relay, error) {
	var storer merkle.Storer
	var err error

	if dbPath := configs.Snapshot().Transcripts.DBPath; dbPath != "" {
		storer, err = merkle.NewSQLiteStorer(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
		}
		logger.Info("using SQLite transcript storage", zap.String("path", dbPath))
	} else {
		storer = merkle.NewMemoryStorer()
		logger.Info("using in-memory transcript storage")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	r := &Relay{
		configs:     configs,
		storer:      storer,
		newProvider: newProvider,
		logger:      logger,
		server:      app,
	}
	r.routes(app)

	return r, nil
}

func (r *Relay) routes(app *fiber.App) {
	app.Post("/api/chat", r.handleChat)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	// Transcript inspection endpoints
	app.Get("/transcripts/stats", r.handleTranscriptStats)
	app.Get("/transcripts/node/:hash", r.handleGetNode)
	app.Get("/transcripts/history", r.handleListHistories)
	app.Get("/transcripts/history/:hash", r.handleGetHistory)
}

// Run starts the relay on the configured listening address.
func (r *Relay) Run() error {
	cfg := r.configs.Snapshot()
	r.logger.Info("starting relay server",
		zap.String("listen", cfg.Server.ListenAddr),
		zap.String("provider", cfg.Provider.BaseURL),
		zap.String("model", cfg.Provider.Model),
	)

	return r.server.Listen(cfg.Server.ListenAddr)
}

// Serve runs the relay on an existing listener.
func (r *Relay) Serve(ln net.Listener) error {
	return r.server.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (r *Relay) Shutdown() error {
	return r.server.Shutdown()
}

// Close releases the transcript storage.
func (r *Relay) Close() error {
	return r.storer.Close()
}

// handleChat relays one conversation to the provider.
//
// The first chunk is awaited before anything is written so that failures up
// to that point still produce a JSON error with status 500. Once streaming
// has begun the status is already sent, so a failure drops the connection
// without the terminating chunk and the client sees a truncated body.
func (r *Relay) handleChat(c *fiber.Ctx) error {
	startTime := time.Now()
	log := r.logger.With(zap.String("request_id", uuid.NewString()))

	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return r.fail(c, log, &Error{Kind: KindRequest, Message: "invalid request body", Err: err})
	}
	for i, m := range req.Messages {
		if !m.Role.Valid() {
			return r.fail(c, log, &Error{
				Kind:    KindRequest,
				Message: fmt.Sprintf("invalid role %q in message %d", m.Role, i),
			})
		}
	}

	log.Debug("received chat request", zap.Int("message_count", len(req.Messages)))

	// Each request sees one consistent config, even across a reload.
	cfg := r.configs.Snapshot()
	if cfg.Provider.APIKey == "" {
		return r.fail(c, log, ErrMissingCredential)
	}

	provider, err := r.newProvider(cfg.Provider)
	if err != nil {
		return r.fail(c, log, &Error{Kind: KindConfiguration, Err: err})
	}

	creq := llm.CompletionRequest{
		Model:    cfg.Provider.Model,
		Messages: llm.WithPersona(req.Messages),
	}

	// Not tied to the fiber context: the stream writer outlives the handler.
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := provider.Stream(ctx, creq)
	if err != nil {
		cancel()
		return r.fail(c, log, upstreamError(err))
	}

	first, err := stream.Recv()
	done := errors.Is(err, io.EOF)
	if err != nil && !done {
		stream.Close()
		cancel()
		return r.fail(c, log, upstreamError(err))
	}

	log.Debug("provider stream open",
		zap.String("model", creq.Model),
		zap.Duration("first_chunk_after", time.Since(startTime)),
	)

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	conn := c.Context().Conn()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer stream.Close()

		var reply strings.Builder
		send := func(chunk string) bool {
			reply.WriteString(chunk)
			if _, err := w.WriteString(chunk); err != nil {
				return false
			}
			return w.Flush() == nil
		}

		if !done {
			if !send(first) {
				log.Warn("client disconnected, cancelling upstream")
				return
			}
			for chunk, err := range llm.Chunks(stream) {
				if err != nil {
					log.Error("provider stream failed mid-response, aborting",
						zap.Error(err),
						zap.Int("bytes_sent", reply.Len()),
					)
					conn.Close()
					return
				}
				if !send(chunk) {
					log.Warn("client disconnected, cancelling upstream", zap.Int("bytes_sent", reply.Len()))
					return
				}
			}
		}

		log.Info("completion streamed",
			zap.Int("message_count", len(creq.Messages)),
			zap.Int("reply_bytes", reply.Len()),
			zap.Duration("duration", time.Since(startTime)),
		)

		if reply.Len() == 0 {
			return
		}
		r.recordTurn(log, llm.Turn{
			Model:    creq.Model,
			Messages: creq.Messages,
			Reply:    llm.AssistantMessage(reply.String()),
		})
	}))

	return nil
}

func (r *Relay) fail(c *fiber.Ctx, log *zap.Logger, err error) error {
	log.Error("chat request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: clientMessage(err)})
}

// recordTurn stores the exchange as a chain of nodes: persona, client
// messages, reply. A repeated history deduplicates to the nodes already
// stored and a different reply branches from the shared prefix. Failures are
// logged only; the client already has its answer.
func (r *Relay) recordTurn(log *zap.Logger, turn llm.Turn) {
	if r.storer == nil {
		return
	}

	msgs := make([]llm.Message, 0, len(turn.Messages)+1)
	msgs = append(msgs, turn.Messages...)
	msgs = append(msgs, turn.Reply)
	nodes := merkle.Chain(msgs, turn.Model)

	added, err := merkle.PutChain(context.Background(), r.storer, nodes)
	if err != nil {
		log.Error("failed to store transcript", zap.Error(err))
		return
	}

	log.Debug("transcript stored",
		zap.String("head_hash", logger.Truncate(nodes[len(nodes)-1].Hash, 16)),
		zap.Int("new_nodes", added),
		zap.String("reply_preview", logger.Truncate(turn.Reply.Content, 50)),
	)
}
