package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"finsight/internal/api"
	"finsight/internal/cli"
	"finsight/internal/query"
	"finsight/internal/services"
	"finsight/internal/session"
	"finsight/internal/views"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	backendResult := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()

	client, err := api.NewClient(cfg.BaseURL, cfg.HTTPTimeout)
	if err != nil {
		logger.Error("Invalid API base URL", "error", err, "base_url", cfg.BaseURL)
		os.Exit(1)
	}

	sessions := session.NewStore(backendResult.Sessions, client)
	user := cli.EstablishSession(ctx, logger, cfg, sessions)

	guard := views.NewGuard(sessions)
	if !guard.Allow(views.RouteDashboard) {
		logger.Error("Session required for dashboard")
		os.Exit(1)
	}

	mutations := services.NewMutations(client)

	dashboard := views.NewDashboard(client, user, cfg.HTTPTimeout)
	transactions := views.NewTransactions(client, mutations, user, cfg.HTTPTimeout)
	alerts := views.NewFraudAlerts(client, mutations, user, cfg.HTTPTimeout)
	subscriptions := views.NewSubscriptions(client, mutations, user, cfg.DueSoonDays, cfg.HTTPTimeout)
	defer func() {
		dashboard.Close()
		transactions.Close()
		alerts.Close()
		subscriptions.Close()
	}()

	// All four views fetch concurrently; wait for every controller to settle.
	loadCtx, cancel := context.WithTimeout(ctx, cfg.HTTPTimeout+5*time.Second)
	defer cancel()

	var (
		summaryRes query.Result[api.DashboardSummary]
		txRes      query.Result[[]api.Transaction]
		alertRes   query.Result[[]api.FraudAlert]
		subRes     query.Result[[]api.Subscription]
		dueRes     query.Result[[]api.Subscription]
	)
	g, gctx := errgroup.WithContext(loadCtx)
	g.Go(func() error { summaryRes = dashboard.Await(gctx); return nil })
	g.Go(func() error { txRes = transactions.Await(gctx); return nil })
	g.Go(func() error { alertRes = alerts.Await(gctx); return nil })
	g.Go(func() error { subRes, dueRes = subscriptions.Await(gctx); return nil })
	_ = g.Wait()

	fmt.Printf("FinSight — %s\n\n", user.Username)
	printSummary(summaryRes)
	printTransactions(txRes)
	printAlerts(alertRes)
	printSubscriptions(subRes, dueRes)
}

func printSummary(res query.Result[api.DashboardSummary]) {
	fmt.Println("== Dashboard ==")
	if res.Err != nil && !res.HasData {
		fmt.Printf("  unavailable: %v\n\n", res.Err)
		return
	}
	s := res.Data
	fmt.Printf("  Total income:    %10.2f\n", s.TotalIncome)
	fmt.Printf("  Total expenses:  %10.2f\n", s.TotalExpenses)
	fmt.Printf("  Balance:         %10.2f\n", s.CurrentBalance)
	fmt.Printf("  Flagged:         %10d\n", s.TotalFlaggedTransactions)
	fmt.Printf("  Avg fraud score: %10.1f\n", s.AverageFraudScore)
	if len(s.SpendingByCategory) > 0 {
		fmt.Println("  Spending by category:")
		for _, c := range s.SpendingByCategory {
			fmt.Printf("    %-20s %10.2f\n", c.Category, c.Amount)
		}
	}
	fmt.Println()
}

func printTransactions(res query.Result[[]api.Transaction]) {
	fmt.Println("== Transactions ==")
	if res.Err != nil && !res.HasData {
		fmt.Printf("  unavailable: %v\n\n", res.Err)
		return
	}
	if len(res.Data) == 0 {
		fmt.Println("  no transactions found")
		fmt.Println()
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  DATE\tDESCRIPTION\tCATEGORY\tTYPE\tAMOUNT\tRISK\tSCORE")
	for _, tx := range res.Data {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%.2f\t%s\t%.0f\n",
			tx.TransactionDate.Format("2006-01-02"),
			tx.Description, tx.Category, tx.Type, tx.Amount, tx.RiskLevel, tx.FraudScore)
	}
	w.Flush()
	fmt.Println()
}

func printAlerts(res query.Result[[]api.FraudAlert]) {
	fmt.Println("== Fraud alerts (unresolved) ==")
	if res.Err != nil && !res.HasData {
		fmt.Printf("  unavailable: %v\n\n", res.Err)
		return
	}
	if len(res.Data) == 0 {
		fmt.Println("  none")
		fmt.Println()
		return
	}
	for _, alert := range res.Data {
		fmt.Printf("  [%s] #%d %s\n", alert.Severity, alert.ID, alert.Message)
	}
	fmt.Println()
}

func printSubscriptions(res, due query.Result[[]api.Subscription]) {
	fmt.Println("== Subscriptions ==")
	if due.Err == nil && len(due.Data) > 0 {
		fmt.Printf("  %d subscription(s) due soon:\n", len(due.Data))
		for _, sub := range due.Data {
			fmt.Printf("    %s — %.2f due %s\n",
				sub.Merchant, sub.AvgAmount, sub.NextDueDate.Format("2006-01-02"))
		}
	}
	if res.Err != nil && !res.HasData {
		fmt.Printf("  unavailable: %v\n", res.Err)
		return
	}
	if len(res.Data) == 0 {
		fmt.Println("  no active subscriptions found")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  MERCHANT\tAVG AMOUNT\tLAST PAID\tNEXT DUE\tSTATUS")
	for _, sub := range res.Data {
		fmt.Fprintf(w, "  %s\t%.2f\t%s\t%s\t%s\n",
			sub.Merchant, sub.AvgAmount,
			sub.LastPaidDate.Format("2006-01-02"),
			sub.NextDueDate.Format("2006-01-02"),
			sub.Status)
	}
	w.Flush()
}
