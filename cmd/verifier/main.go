package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	delivery "finfluencer-tracker/internal/verifier/delivery/http"
	"finfluencer-tracker/internal/verifier/delivery/scheduler"
	_ "finfluencer-tracker/internal/verifier/docs"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var (
	configPath   string
	batchLimit   int
	predictionID uint
	topN         int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify one prediction or a batch of unverified predictions",
	RunE:  runVerify,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the verifier HTTP API and batch scheduler",
	Run:   runServe,
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the creator leaderboard",
	RunE:  runLeaderboard,
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, predictionID == 0)
	defer a.Close()

	if predictionID != 0 {
		result, err := a.verification.VerifyByID(ctx, predictionID)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	}

	limit := batchLimit
	if limit <= 0 {
		limit = a.cfg.Verifier.BatchLimit
	}
	summary, err := a.verification.VerifyUnverified(ctx, limit, a.cfg.Verifier.EffectiveBatchDelay())
	if err != nil {
		return err
	}
	return printJSON(cmd, summary)
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, true)
	defer a.Close()
	appLogger := a.logger

	appLogger.Info("Starting Verifier Service", logger.Field("name", a.cfg.App.Name))

	if a.cfg.Scheduler.Enabled {
		sched, err := scheduler.NewScheduler(a.verification, a.cfg.Scheduler, a.cfg.Verifier, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize scheduler", logger.ErrorField(err))
		}
		go sched.Start(ctx)
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")
	delivery.NewVerificationHandler(a.verification, a.cfg.Verifier, appLogger).RegisterRoutes(apiV1)
	delivery.NewLeaderboardHandler(a.leaderboard, appLogger).RegisterRoutes(apiV1.Group("/leaderboard"))

	e.GET("/metrics", echo.WrapHandler(a.metrics.Handler()))
	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := listenAddr(a.cfg.API.Host, a.cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := newApp(ctx, false)
	defer a.Close()

	entries, err := a.leaderboard.GetLeaderboard(ctx, topN)
	if err != nil {
		return err
	}
	writeLeaderboard(cmd, entries)
	return nil
}

func writeLeaderboard(cmd *cobra.Command, entries []dto.LeaderboardEntry) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCREATOR\tACCURACY\tPREDICTIONS\tVIDEOS")
	for i, entry := range entries {
		accuracy := "-"
		if entry.AccuracyScore != nil {
			accuracy = strconv.FormatFloat(*entry.AccuracyScore*100, 'f', 1, 64) + "%"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", i+1, entry.Name, accuracy, entry.TotalPredictions, entry.VideoCount)
	}
	_ = w.Flush()
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// @title Finfluencer Verifier API
// @version 1.0
// @description Grades finance creators' market predictions against actual outcomes.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "verifier", SilenceUsage: true}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-verifier.yaml", "Path to the configuration file")

	verifyCmd.Flags().IntVarP(&batchLimit, "limit", "l", 0, "Maximum predictions to verify (defaults to verifier.batch_limit)")
	verifyCmd.Flags().UintVar(&predictionID, "prediction-id", 0, "Verify a single prediction by ID")
	leaderboardCmd.Flags().IntVarP(&topN, "top", "n", 20, "Number of creators to show")

	rootCmd.AddCommand(verifyCmd, serveCmd, leaderboardCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing verifier CLI: %s\n", err)
		os.Exit(1)
	}
}
