package main

import (
	"context"
	"os"

	"finsight/internal/api"
	"finsight/internal/cli"
	"finsight/internal/query"
	"finsight/internal/services"
	"finsight/internal/session"
	"finsight/internal/views"
)

// finsight-watch keeps the transaction and fraud-alert views polling in the
// background and logs every change until interrupted.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	backendResult := cli.InitBackend(ctx, logger, cfg)

	client, err := api.NewClient(cfg.BaseURL, cfg.HTTPTimeout)
	if err != nil {
		logger.Error("Invalid API base URL", "error", err, "base_url", cfg.BaseURL)
		os.Exit(1)
	}

	sessions := session.NewStore(backendResult.Sessions, client)
	user := cli.EstablishSession(ctx, logger, cfg, sessions)

	mutations := services.NewMutations(client)

	transactions := views.NewTransactions(client, mutations, user, cfg.HTTPTimeout)
	alerts := views.NewFraudAlerts(client, mutations, user, cfg.HTTPTimeout)

	transactions.OnChange(func(res query.Result[[]api.Transaction]) {
		if res.Err != nil {
			logger.Warn("Transaction refresh failed", "error", res.Err, "stale_data", res.HasData)
			return
		}
		logger.Info("Transactions updated", "count", len(res.Data))
	})
	alerts.OnChange(func(res query.Result[[]api.FraudAlert]) {
		if res.Err != nil {
			logger.Warn("Fraud alert refresh failed", "error", res.Err, "stale_data", res.HasData)
			return
		}
		logger.Info("Fraud alerts updated", "count", len(res.Data))
		for _, alert := range res.Data {
			if alert.Severity == "HIGH" {
				logger.Warn("High severity fraud alert", "alert_id", alert.ID, "message", alert.Message)
			}
		}
	})

	transactions.EnableLiveRefresh(cfg.PollInterval)
	alerts.EnableLiveRefresh(cfg.PollInterval)
	logger.Info("Watching for changes",
		"poll_interval", cfg.PollInterval,
		"username", user.Username)

	shutdownCtx, done := cli.GracefulShutdown(logger, cfg.HTTPTimeout, func() {
		transactions.Close()
		alerts.Close()
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	})

	cli.WaitForShutdown(shutdownCtx, done)
}
