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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"petrovich.ru/petrovich/api"
	"petrovich.ru/petrovich/inflector"
	"petrovich.ru/petrovich/logger"
	"petrovich.ru/petrovich/pipeline"
	"petrovich.ru/petrovich/rules"
	"petrovich.ru/petrovich/rulesource"
	"petrovich.ru/petrovich/worker"
)

const (
	engineStartMaxRetries = 5
	retryDelay            = 5 * time.Second
	shutdownTimeout       = 10 * time.Second
)

func newServeCommand(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			engines, ppln, err := startPipeline(ctx, *config)
			if err != nil {
				return err
			}
			return serveAPI(ctx, *config, engines, ppln)
		},
	}
}

func newWorkerCommand(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Process batch tasks from RMQ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			engines, ppln, err := startPipeline(ctx, *config)
			if err != nil {
				return err
			}
			mainLogger := logger.NewLogger("Main")
			if config.RestAPIActive {
				go func() {
					if err := serveAPI(ctx, *config, engines, ppln); err != nil {
						mainLogger.Err(err).Msg("REST API stopped with error")
					}
				}()
			}
			return runWorker(ctx, mainLogger, ppln)
		},
	}
}

// startPipeline loads the rule table, retrying while the source is not
// reachable yet, and starts the watcher when asked to. A malformed table is
// never retried.
func startPipeline(ctx context.Context, config Config) (*inflector.Reloadable, pipeline.Pipeline, error) {
	mainLogger := logger.NewLogger("Main")
	source, watched, release, err := ruleSource(config)
	if err != nil {
		return nil, nil, err
	}

	var engine *inflector.Engine
	for retry := 0; ; retry++ {
		engine, err = inflector.New(ctx, source)
		if err == nil {
			break
		}
		if errors.Is(err, rules.ErrMalformedStructure) {
			release()
			return nil, nil, fmt.Errorf("rule table is malformed: %w", err)
		}
		if retry+1 >= engineStartMaxRetries {
			release()
			return nil, nil, fmt.Errorf("could not load rule table after %d retries: %w", engineStartMaxRetries, err)
		}
		mainLogger.Err(err).Msgf("Failed to load rule table. Retrying in %s", retryDelay)
		select {
		case <-ctx.Done():
			release()
			return nil, nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	engines := inflector.NewReloadable(engine)

	if config.RulesWatch && len(watched) > 0 {
		watcher, err := rulesource.NewWatcher(source, engines, watched...)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("failed to watch rule files: %w", err)
		}
		go func() {
			defer release()
			defer watcher.Close()
			mainLogger.Info().Strs("files", watched).Msg("Watching rule files")
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				mainLogger.Err(err).Msg("Rule watcher stopped")
			}
		}()
	} else {
		go func() {
			<-ctx.Done()
			release()
		}()
	}

	ppln := pipeline.New(engines, pipeline.Params{Workers: config.PipelineWorkers})
	return engines, ppln, nil
}

func serveAPI(ctx context.Context, config Config, engines *inflector.Reloadable, ppln pipeline.Pipeline) error {
	mainLogger := logger.NewLogger("Main")
	apiConfig, err := api.ReadConfig()
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.RestAPIPort),
		Handler:           api.NewServer(engines, ppln, apiConfig).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLogger.Err(err).Msg("Failed to shut down REST API")
		}
	}()

	mainLogger.Info().Msgf("REST API on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runWorker(ctx context.Context, mainLogger zerolog.Logger, ppln pipeline.Pipeline) error {
	mainLogger.Info().Msg("Start petrovich worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			mainLogger.Err(err).Msg("Could not initialize RMQ worker")
			return err
		}
		err = rmqWorker.StartWorker(ctx)
		if ctx.Err() != nil {
			return nil
		}
		mainLogger.Err(err).Msgf("Worker returned with error. Launching new in %s", retryDelay)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retryDelay):
		}
	}
}
