package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/drover-sh/drover/internal/cli/output"
	"github.com/drover-sh/drover/pkg/supervisor"
)

var (
	statusOutput  string
	statusAPIPort int
	statusRuns    int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show supervisor status",
	Long: `Display the current status of a running drover supervisor.

This command queries the status endpoint of the local API server and shows
the lifecycle state, registered services, and optionally recent run history.

Examples:
  # Check status (uses default settings)
  drover status

  # Check status with custom API port
  drover status --api-port 9080

  # Include the last 10 runs
  drover status --runs 10

  # Output as JSON
  drover status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 8080, "API server port")
	statusCmd.Flags().IntVar(&statusRuns, "runs", 0, "Also show the last N runs")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// apiEnvelope mirrors the API response wrapper with the payload left raw so
// each command can decode its own data type.
type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// runRecord mirrors the run-history rows returned by the API.
type runRecord struct {
	ID        uint       `json:"id"`
	PID       int        `json:"pid"`
	Hostname  string     `json:"hostname"`
	Version   string     `json:"version"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at"`
	Outcome   string     `json:"outcome"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 2 * time.Second}

	var status supervisor.Status
	if err := getAPI(client, "/api/v1/status", &status); err != nil {
		return fmt.Errorf("supervisor is not reachable on port %d: %w", statusAPIPort, err)
	}

	var runs []runRecord
	if statusRuns > 0 {
		path := fmt.Sprintf("/api/v1/runs?limit=%d", statusRuns)
		if err := getAPI(client, path, &runs); err != nil {
			return fmt.Errorf("failed to fetch run history: %w", err)
		}
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, statusReport{status, runs})
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, statusReport{status, runs})
	default:
		printStatusTables(status, runs)
	}

	return nil
}

type statusReport struct {
	Status supervisor.Status `json:"status" yaml:"status"`
	Runs   []runRecord       `json:"runs,omitempty" yaml:"runs,omitempty"`
}

// getAPI fetches a path from the local API server and decodes the payload.
func getAPI(client *http.Client, path string, out any) error {
	url := fmt.Sprintf("http://localhost:%d%s", statusAPIPort, path)
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	if envelope.Error != "" {
		return fmt.Errorf("%s", envelope.Error)
	}
	return json.Unmarshal(envelope.Data, out)
}

func printStatusTables(status supervisor.Status, runs []runRecord) {
	fmt.Println()
	fmt.Println("Drover Supervisor Status")
	fmt.Println("========================")
	fmt.Println()
	fmt.Printf("  State:    %s\n", status.State)
	fmt.Printf("  PID:      %d\n", status.PID)
	fmt.Printf("  Version:  %s (%s)\n", status.Version, status.Commit)
	if !status.StartedAt.IsZero() {
		fmt.Printf("  Started:  %s\n", status.StartedAt.Format(time.RFC3339))
		fmt.Printf("  Uptime:   %s\n", time.Since(status.StartedAt).Round(time.Second))
	}
	fmt.Println()

	rows := make([][]string, 0, len(status.Services))
	for _, svc := range status.Services {
		state := "enabled"
		if svc.Disabled {
			state = "disabled"
		}
		rows = append(rows, []string{svc.Name, state})
	}
	output.PrintTable(os.Stdout, []string{"Service", "State"}, rows)
	fmt.Println()

	if len(runs) > 0 {
		runRows := make([][]string, 0, len(runs))
		for _, r := range runs {
			stopped := "-"
			if r.StoppedAt != nil {
				stopped = r.StoppedAt.Format(time.RFC3339)
			}
			outcome := r.Outcome
			if outcome == "" {
				outcome = "running"
			}
			runRows = append(runRows, []string{
				strconv.FormatUint(uint64(r.ID), 10),
				strconv.Itoa(r.PID),
				r.Version,
				r.StartedAt.Format(time.RFC3339),
				stopped,
				outcome,
			})
		}
		output.PrintTable(os.Stdout, []string{"ID", "PID", "Version", "Started", "Stopped", "Outcome"}, runRows)
		fmt.Println()
	}
}
