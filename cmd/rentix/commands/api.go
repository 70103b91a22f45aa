package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rentix/backend/internal/api"
	"github.com/wonny/rentix/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 지수 비율 / 연동 임대료 / 소급 정산 계산 제공
- 통지 기한 / 납부 일정 계산 제공

Endpoints:
  GET  /health                          - Health check
  POST /api/indexation/ratio            - 지수 비율 (기준 변경 보정)
  POST /api/indexation/rent             - 연동 임대료 계산
  POST /api/indexation/reconcile        - 소급 정산
  POST /api/deadlines                   - 통지 기한
  POST /api/payments/schedule           - 납부 일정
  GET  /api/contracts/{id}              - 계약 조회
  GET  /api/contracts/{id}/calculations - 계산 이력
  GET  /api/contracts/{id}/deadlines    - 계약 기한
  POST /api/contracts/{id}/recompute    - 계약 재계산

Example:
  go run ./cmd/rentix api
  go run ./cmd/rentix api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Rentix API Server ===")

	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	router := api.NewRouter(api.Handlers{
		Indexation: handlers.NewIndexationHandler(a.resolver, a.calc, a.audit, log),
		Deadlines:  handlers.NewDeadlineHandler(a.planner, log),
		Payments:   handlers.NewPaymentHandler(a.calc, log),
		Contracts:  handlers.NewContractHandler(a.contracts, a.audit, a.planner, a.recomputer(), log),
	}, log)

	server := api.New(a.cfg, log, router)

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
