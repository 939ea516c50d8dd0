package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cashify/ledger/internal/infrastructure/postgres"
)

var (
	baseURL    string
	businessID string
	timeout    time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledger-cli",
		Short: "Cashify ledger CLI tool",
		Long:  `A command line interface for operating the Cashify ledger service.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().StringVar(&businessID, "business", "", "Business ID to operate on")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile [accountID]",
		Short: "Recompute balances from entries and compare against cached values",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if businessID == "" {
				fmt.Println("--business is required")
				os.Exit(1)
			}
			if len(args) == 1 {
				reconcileAccount(args[0])
				return
			}
			reconcileAll()
		},
	}
	rootCmd.AddCommand(reconcileCmd)

	repairCmd := &cobra.Command{
		Use:   "repair <accountID>",
		Short: "Overwrite an account's cached balance with a full replay of its entries",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if businessID == "" {
				fmt.Println("--business is required")
				os.Exit(1)
			}
			repairAccount(args[0])
		},
	}
	rootCmd.AddCommand(repairCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	var databaseURL, migrationsPath string
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Database URL")
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrations(databaseURL, migrationsPath); err != nil {
				fmt.Printf("migration failed: %v\n", err)
				os.Exit(1)
			}
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrationsDown(databaseURL, migrationsPath); err != nil {
				fmt.Printf("rollback failed: %v\n", err)
				os.Exit(1)
			}
		},
	})

	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func reconcileAccount(accountID string) {
	body := get("/api/v1/accounts/" + accountID + "/reconcile")

	var result struct {
		AccountID     string `json:"account_id"`
		CachedBalance string `json:"cached_balance"`
		ReplayBalance string `json:"replay_balance"`
		Difference    string `json:"difference"`
		Consistent    bool   `json:"consistent"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printResult(result.AccountID, result.CachedBalance, result.ReplayBalance, result.Difference, result.Consistent)
	if !result.Consistent {
		os.Exit(1)
	}
}

func repairAccount(accountID string) {
	body := do(http.MethodPost, "/api/v1/accounts/"+accountID+"/repair")

	var result struct {
		AccountID     string `json:"account_id"`
		CachedBalance string `json:"cached_balance"`
		ReplayBalance string `json:"replay_balance"`
		Difference    string `json:"difference"`
		Consistent    bool   `json:"consistent"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if result.Consistent {
		fmt.Printf("OK     %s cached=%s no repair needed\n", result.AccountID, result.CachedBalance)
		return
	}

	fmt.Printf("FIXED  %s cached=%s replay=%s diff=%s\n",
		result.AccountID, result.CachedBalance, result.ReplayBalance, result.Difference)
}

func reconcileAll() {
	body := get("/api/v1/ledger/reconcile")

	var results []struct {
		AccountID     string `json:"account_id"`
		CachedBalance string `json:"cached_balance"`
		ReplayBalance string `json:"replay_balance"`
		Difference    string `json:"difference"`
		Consistent    bool   `json:"consistent"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		fmt.Printf("failed to parse response: %v\n", err)
		os.Exit(1)
	}

	drifted := 0
	for _, r := range results {
		printResult(r.AccountID, r.CachedBalance, r.ReplayBalance, r.Difference, r.Consistent)
		if !r.Consistent {
			drifted++
		}
	}

	fmt.Printf("\nchecked %d accounts, %d with drift\n", len(results), drifted)
	if drifted > 0 {
		os.Exit(1)
	}
}

func printResult(accountID, cached, replay, diff string, consistent bool) {
	status := "OK"
	if !consistent {
		status = "DRIFT"
	}
	fmt.Printf("%-6s %s cached=%s replay=%s diff=%s\n", status, accountID, cached, replay, diff)
}

func get(path string) []byte {
	return do(http.MethodGet, path)
}

func do(method, path string) []byte {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		fmt.Printf("error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("X-Business-ID", businessID)

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("request failed (status %d)\nresponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	return body
}
