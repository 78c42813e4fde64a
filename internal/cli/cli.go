package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/arjun2112/finops-engine/internal/config"
	"github.com/arjun2112/finops-engine/internal/http"
	"github.com/arjun2112/finops-engine/internal/log"
	internal_storage "github.com/arjun2112/finops-engine/internal/storage"
	"github.com/arjun2112/finops-engine/pkg/models"
	"github.com/arjun2112/finops-engine/pkg/services"
	"github.com/arjun2112/finops-engine/pkg/storage"
	"github.com/arjun2112/finops-engine/pkg/workflow"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func SetupCLI(rootCmd *cobra.Command) {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a batch of alerts through the workflow",
		Run: func(cmd *cobra.Command, args []string) {
			alertsPath, _ := cmd.Flags().GetString("alerts")
			knowledgePath, _ := cmd.Flags().GetString("knowledge")
			analysisText, _ := cmd.Flags().GetString("analysis")
			workers, _ := cmd.Flags().GetInt("workers")
			if alertsPath == "" {
				fmt.Fprintln(os.Stderr, "Error: --alerts is required")
				os.Exit(1)
			}

			cfg := loadConfig()
			store := initStore(cmd, cfg)
			defer store.Close()

			alerts := loadAlerts(alertsPath)
			engine := workflow.NewEngine(
				store,
				loadKnowledge(knowledgePath),
				services.NewStubAnalysis(analysisText),
				services.NewSerialPayment(services.NewStubPayment()),
				log.GetLogger(),
				cfg.Workflow(),
			)

			results := workflow.NewBatchRunner(engine, workers).Run(context.Background(), alerts)
			failed := 0
			for _, res := range results {
				printResult(res)
				if res.Err != nil || !res.State.Terminal() {
					failed++
				}
			}
			fmt.Fprintf(os.Stdout, "%d/%d runs reached a terminal state\n", len(results)-failed, len(results))
			if failed > 0 {
				os.Exit(1)
			}
		},
	}
	runCmd.Flags().String("alerts", "", "Path to a JSON file with an array of alerts")
	runCmd.Flags().String("knowledge", "", "Path to a JSON file seeding the stub knowledge base")
	runCmd.Flags().String("analysis", "Recommendation: decommission the flagged resource.", "Canned analysis text for the stub analysis service")
	runCmd.Flags().Int("workers", 0, "Concurrent runs (0 = number of CPUs)")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived run records",
		Run: func(cmd *cobra.Command, args []string) {
			sinceFlag, _ := cmd.Flags().GetDuration("since")
			cfg := loadConfig()
			store := initStore(cmd, cfg)
			defer store.Close()

			records, err := store.QueryRecords(time.Now().Add(-sinceFlag))
			if err != nil {
				log.GetLogger().Errorf("Failed to query run records: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to query run records: %v\n", err)
				os.Exit(1)
			}
			if len(records) == 0 {
				fmt.Fprintf(os.Stdout, "No run records found.\n")
				return
			}
			for _, rec := range records {
				fmt.Fprintf(os.Stdout, "- %s alert=%s status=%s tx=%s archived=%s\n",
					rec.RunID, rec.AlertID, statusColor(rec.Status), orDash(rec.TxHash),
					rec.ArchivedAt.Format(time.RFC3339))
			}
		},
	}
	runsCmd.Flags().Duration("since", 24*time.Hour, "Look-back window for archived records")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only run archive over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			store := initStore(cmd, cfg)
			defer store.Close()
			if err := http.StartServer(cfg.HTTPPort, store); err != nil {
				log.GetLogger().Errorf("Server failed: %v", err)
				os.Exit(1)
			}
		},
	}

	rootCmd.AddCommand(runCmd, runsCmd, serveCmd)
	rootCmd.PersistentFlags().String("db", "", "Postgres connection string (default: in-memory store)")
}

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.GetLogger().Errorf("Failed to load config: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// initStore opens Postgres when a connection string is given, otherwise
// falls back to the in-memory store for local runs.
func initStore(cmd *cobra.Command, cfg config.Config) storage.Store {
	connStr, _ := cmd.Flags().GetString("db")
	if connStr == "" {
		connStr = cfg.DatabaseURL
	}
	if connStr == "" {
		log.GetLogger().Infof("No database configured, using in-memory store")
		return storage.NewMockStore()
	}
	store, err := internal_storage.InitStore(connStr)
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to initialize store: %v\n", err)
		os.Exit(1)
	}
	return store
}

func loadAlerts(path string) []models.AlertRecord {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read alerts file: %v\n", err)
		os.Exit(1)
	}
	var alerts []models.AlertRecord
	if err := json.Unmarshal(data, &alerts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to parse alerts file: %v\n", err)
		os.Exit(1)
	}
	if len(alerts) == 0 {
		fmt.Fprintln(os.Stderr, "Error: alerts file contains no alerts")
		os.Exit(1)
	}
	return alerts
}

func loadKnowledge(path string) *services.StubSearch {
	if path == "" {
		return services.NewStubSearch()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read knowledge file: %v\n", err)
		os.Exit(1)
	}
	var entries []services.KnowledgeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to parse knowledge file: %v\n", err)
		os.Exit(1)
	}
	return services.NewStubSearch(entries...)
}

func printResult(res workflow.BatchResult) {
	if res.Err != nil {
		fmt.Fprintf(os.Stdout, "- %s: %s (%v)\n", res.Alert.ID, color.RedString("FAILED"), res.Err)
		return
	}
	line := fmt.Sprintf("- %s: %s", res.Alert.ID, statusColor(res.State.Status))
	if res.State.TxHash != "" {
		line += fmt.Sprintf(" bounty=%.5f tx=%s", res.State.BountyAmount, res.State.TxHash)
	}
	fmt.Fprintln(os.Stdout, line)
}

func statusColor(status models.WorkflowStatus) string {
	switch status {
	case models.CompletedWorkflowStatus:
		return color.GreenString(string(status))
	case models.EscalatedWorkflowStatus:
		return color.YellowString(string(status))
	default:
		return string(status)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
