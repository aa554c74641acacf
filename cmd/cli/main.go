package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/olekh/ledgerd/internal/infrastructure/auth"
	"github.com/olekh/ledgerd/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledgerd-cli",
		Short: "ledgerd CLI tool",
		Long:  `A command line interface for interacting with the ledgerd API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledgerd API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(transferCmd())
	rootCmd.AddCommand(balancesCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(trendsCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func transferCmd() *cobra.Command {
	var (
		from           string
		to             string
		amount         string
		currency       string
		idempotencyKey string
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Create a transfer between two accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.Marshal(map[string]string{
				"from_account": from,
				"to_account":   to,
				"amount":       amount,
				"currency":     currency,
			})
			if err != nil {
				return err
			}

			req, err := http.NewRequest(http.MethodPost, baseURL+"/v1/transactions", strings.NewReader(string(payload)))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			if idempotencyKey != "" {
				req.Header.Set("Idempotency-Key", idempotencyKey)
			}

			return doRequest(req)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source account key (customer#name)")
	cmd.Flags().StringVar(&to, "to", "", "Destination account key (customer#name)")
	cmd.Flags().StringVar(&amount, "amount", "", "Transfer amount")
	cmd.Flags().StringVar(&currency, "currency", "USD", "Currency code")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func balancesCmd() *cobra.Command {
	var (
		account  string
		customer string
	)

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show account balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if account != "" {
				query.Set("account", account)
			}
			if customer != "" {
				query.Set("customer", customer)
			}

			req, err := http.NewRequest(http.MethodGet, baseURL+"/v1/balances?"+query.Encode(), nil)
			if err != nil {
				return err
			}

			return doRequest(req)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account key (customer#name)")
	cmd.Flags().StringVar(&customer, "customer", "", "Customer identity")

	return cmd
}

func statsCmd() *cobra.Command {
	var (
		accounts  string
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show transaction stats for accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("account", accounts)
			if startDate != "" {
				query.Set("start_date", startDate)
			}
			if endDate != "" {
				query.Set("end_date", endDate)
			}

			req, err := http.NewRequest(http.MethodGet, baseURL+"/v1/stats?"+query.Encode(), nil)
			if err != nil {
				return err
			}

			return doRequest(req)
		},
	}

	cmd.Flags().StringVar(&accounts, "account", "", "Account key or comma-separated list")
	cmd.Flags().StringVar(&startDate, "start", "", "Window start (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Window end (RFC3339 or YYYY-MM-DD)")
	cmd.MarkFlagRequired("account")

	return cmd
}

func trendsCmd() *cobra.Command {
	var (
		accounts string
		period   string
		flow     bool
	)

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show period-bucketed volume trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("account", accounts)
			query.Set("period", period)
			if flow {
				query.Set("kind", "flow")
			}

			req, err := http.NewRequest(http.MethodGet, baseURL+"/v1/trends?"+query.Encode(), nil)
			if err != nil {
				return err
			}

			return doRequest(req)
		},
	}

	cmd.Flags().StringVar(&accounts, "account", "", "Account key or comma-separated list")
	cmd.Flags().StringVar(&period, "period", "daily", "Bucket period: daily, weekly or monthly")
	cmd.Flags().BoolVar(&flow, "flow", false, "Split buckets into inflow and outflow")
	cmd.MarkFlagRequired("account")

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret     string
		customer   string
		expiration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a JWT for a customer identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.NewJWTManager(secret, expiration).Generate(customer)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret")
	cmd.Flags().StringVar(&customer, "customer", "", "Customer identity claim")
	cmd.Flags().DurationVar(&expiration, "expiration", 24*time.Hour, "Token lifetime")
	cmd.MarkFlagRequired("secret")
	cmd.MarkFlagRequired("customer")

	return cmd
}

func migrateCmd() *cobra.Command {
	var (
		databaseURL    string
		migrationsPath string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, migrationsPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, migrationsPath)
		},
	})

	return cmd
}

func doRequest(req *http.Request) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		fmt.Println(string(body))
		return nil
	}

	printJSON(parsed)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
