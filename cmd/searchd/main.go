// Command searchd is the long-running daemon form of the search engine:
// it exposes the same run semantics as cmd/search over HTTP and
// WebSocket, so an operator can start, watch, and cancel runs without a
// new process per invocation, grounded on cmd/kernel/main.go's env-var
// config plus graceful-shutdown bootstrap.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/narrativegraph/pathfinder/internal/httpapi"
)

func main() {
	mintToken := flag.String("mint-token", "", "mint an operator token for the given subject and exit")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "searchd: building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *mintToken != "" {
		token, err := httpapi.MintOperatorToken(*mintToken)
		if err != nil {
			logger.Fatal("failed to mint token", zap.Error(err))
		}
		fmt.Println(token)
		return
	}

	logger.Info("starting searchd")

	hub := httpapi.NewHub(logger)
	runs := httpapi.NewRunManager(hub, logger)

	var redisClient *redis.Client
	if redisURL := getEnv("SEARCHD_REDIS_URL", ""); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Warn("invalid SEARCHD_REDIS_URL, running without rate limiting", zap.Error(err))
		} else {
			redisClient = redis.NewClient(opts)
		}
	}
	limiter := httpapi.NewRateLimiter(redisClient, logger, httpapi.DefaultRateLimit())

	publicPaths := []string{"/health"}
	jwtMiddleware := httpapi.NewJWTMiddleware(publicPaths, logger)

	server := httpapi.NewServer(runs, hub, limiter, logger)

	router := mux.NewRouter()
	server.SetupRoutes(router, jwtMiddleware)

	loggedRouter := handlers.LoggingHandler(os.Stdout, router)

	port := getEnv("SEARCHD_PORT", "9100")
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      loggedRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("http server starting", zap.String("port", port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)

	logger.Info("shutdown complete")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
