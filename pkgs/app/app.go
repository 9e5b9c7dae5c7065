// Package app assembles the bot from configuration.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"moviebot/whatsapp-bot/pkgs/cache"
	"moviebot/whatsapp-bot/pkgs/conf"
	"moviebot/whatsapp-bot/pkgs/conversation"
	"moviebot/whatsapp-bot/pkgs/llm"
	"moviebot/whatsapp-bot/pkgs/llmactions"
	"moviebot/whatsapp-bot/pkgs/locker"
	"moviebot/whatsapp-bot/pkgs/session"
	"moviebot/whatsapp-bot/pkgs/whatsapp"
	"moviebot/whatsapp-bot/web"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "moviebot:lock:"

type App struct {
	Config       *conf.Config
	Store        session.Store
	Conversation *conversation.Service
	Handler      *whatsapp.Handler

	janitor *session.Janitor
	redis   *redis.Client
}

type Option func(*options)

type options struct {
	client llm.Client
}

// WithClient skips building the Gemini client.
func WithClient(client llm.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

func New(ctx context.Context, cfg *conf.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{Config: cfg}

	client := o.client
	if client == nil {
		var err error
		client, err = llm.NewClient(ctx, llm.GEMINI_PROVIDER_NAME, cfg.GeminiConfig.Model, cfg.GeminiConfig.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create completion client: %w", err)
		}
	}

	var lk locker.Locker
	switch session.StoreType(cfg.SessionConfig.Store) {
	case session.StoreTypeRedis:
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisConfig.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redis = rdb

		a.Store, err = session.NewStore(session.StoreTypeRedis,
			session.WithRedisClient(rdb),
			session.WithIdleTTL(cfg.SessionConfig.IdleTTL),
		)
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to create session store: %w", err)
		}
		// The lock must outlive the remote call it guards
		lk = locker.NewRedisLocker(rdb, lockPrefix, locker.WithTTL(2*cfg.GeminiConfig.Timeout))
	default:
		store, err := session.NewStore(session.StoreTypeMemory, session.WithIdleTTL(cfg.SessionConfig.IdleTTL))
		if err != nil {
			return nil, fmt.Errorf("failed to create session store: %w", err)
		}
		a.Store = store
		lk = locker.NewMemoryLocker()

		if sweeper, ok := session.AsSweeper(store); ok && cfg.SessionConfig.IdleTTL > 0 {
			a.janitor = session.NewJanitor(sweeper, cfg.SessionConfig.CleanupInterval)
			a.janitor.Start(ctx)
		}
	}

	a.Conversation = conversation.New(a.Store, lk, client, conversation.Options{
		Config:      llmactions.MovieExpertConfig(),
		MaxMessages: cfg.SessionConfig.MaxMessages,
		MaxTokens:   cfg.SessionConfig.MaxTokens,
		Timeout:     cfg.GeminiConfig.Timeout,
		LockTimeout: cfg.SessionConfig.LockTimeout,
	})
	a.Handler = whatsapp.NewHandler(a.Conversation)

	log.Printf("Session store: %s (max %d messages, idle ttl %s)",
		cfg.SessionConfig.Store, cfg.SessionConfig.MaxMessages, cfg.SessionConfig.IdleTTL)

	return a, nil
}

// Router returns the HTTP handler with every operation registered.
func (a *App) Router() (http.Handler, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	api := humachi.New(router, huma.DefaultConfig("Movie Expert WhatsApp Bot", "1.0.0"))

	if err := web.RegisterHealthHandlers(api); err != nil {
		return nil, fmt.Errorf("failed to register health handlers: %w", err)
	}
	if err := web.RegisterWhatsappHandlers(api, a.Handler); err != nil {
		return nil, fmt.Errorf("failed to register WhatsApp handlers: %w", err)
	}

	return router, nil
}

// Server wraps the router in an http.Server listening on the configured port.
func (a *App) Server() (*http.Server, error) {
	router, err := a.Router()
	if err != nil {
		return nil, err
	}

	// Leave room for the remote call inside the write deadline
	writeTimeout := 15 * time.Second
	if t := a.Config.GeminiConfig.Timeout + a.Config.SessionConfig.LockTimeout + 5*time.Second; t > writeTimeout {
		writeTimeout = t
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.BaseConfig.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}, nil
}

// Close stops background work and releases the store.
func (a *App) Close() error {
	if a.janitor != nil {
		a.janitor.Stop()
	}
	// Closing the redis store closes the shared client too
	return a.Store.Close()
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	server, err := a.Server()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		log.Printf("🎬 Movie bot starting on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
