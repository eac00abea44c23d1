package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/conversation"
	"github.com/jwebster45206/npc-engine/internal/handlers"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/internal/services"
	"github.com/jwebster45206/npc-engine/internal/storage"
	"github.com/jwebster45206/npc-engine/pkg/textfilter"
)

var (
	cfgFile string
	port    string
)

var rootCmd = &cobra.Command{
	Use:          "npc-api",
	Short:        "Run the NPC conversation API",
	Long:         `Serves NPC management, chat, history, reputation and quest endpoints backed by Redis and an LLM.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to an optional YAML config file")
	rootCmd.Flags().StringVar(&port, "port", "", "override the listen port")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logger.Setup(cfg)

	log.Info("Starting NPC Engine API",
		"addr", cfg.Addr(),
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider)

	llmService, err := services.NewLLMService(cfg, log)
	if err != nil {
		return err
	}

	store := storage.NewRedisStorage(cfg.RedisAddr(), cfg.RedisDB, cfg.RedisNamespace, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		return fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr(), err)
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer initCancel()
	if err := llmService.InitModel(initCtx); err != nil {
		return fmt.Errorf("initializing %s backend: %w", llmService.Name(), err)
	}

	chats := conversation.NewChatProcessor(store, llmService, cfg.LLMTimeout, log)
	if textfilter.ShouldFilterContent(cfg.ContentRating) {
		log.Info("Profanity filter enabled", "content_rating", cfg.ContentRating)
		chats.WithProfanityFilter(textfilter.NewProfanityFilter())
	}

	router := handlers.NewRouter(handlers.Deps{
		Storage:      store,
		LLM:          llmService,
		Chats:        chats,
		Quests:       conversation.NewQuestProcessor(store, llmService, cfg.LLMTimeout, log),
		Logger:       log,
		CORSAllowAll: cfg.CORSAllowAll,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited")
	return nil
}
