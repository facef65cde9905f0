package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"movers/internal/aggregate"
	"movers/internal/config"
	"movers/internal/jira"
	"movers/internal/logging"
)

var (
	queryFrom     string
	queryTo       string
	queryNotFrom  string
	queryNotTo    string
	querySince    string
	queryUntil    string
	queryLimit    int
	queryMax      int
	queryDiscover bool
)

var queryCmd = &cobra.Command{
	Use:   "query <filter>",
	Short: "Run one aggregation from the command line",
	Long: `Run the movers aggregation once and print the ranked result as JSON.
The filter argument accepts a numeric filter id, a tracker URL, or raw JQL —
the same dialect as the HTTP endpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryFrom, "from", "", "Source status name")
	queryCmd.Flags().StringVar(&queryTo, "to", "", "Target status name")
	queryCmd.Flags().StringVar(&queryNotFrom, "not-from", "", "Excluded source status")
	queryCmd.Flags().StringVar(&queryNotTo, "not-to", "", "Excluded target status")
	queryCmd.Flags().StringVar(&querySince, "since", "", "Inclusive lower time bound (RFC3339 or YYYY-MM-DD)")
	queryCmd.Flags().StringVar(&queryUntil, "until", "", "Inclusive upper time bound (RFC3339 or YYYY-MM-DD)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", aggregate.DefaultLimit, "Ranked entries to print")
	queryCmd.Flags().IntVar(&queryMax, "max-issues", jira.DefaultMaxIssues, "Cap on issues fetched")
	queryCmd.Flags().BoolVar(&queryDiscover, "discover", false, "Tally transition pairs instead of users")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configDirFlag)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.WarnLevel,
	})

	client, err := jira.NewClient(cfg, logger)
	if err != nil {
		return err
	}

	jql, err := jira.ResolveQuery(args[0])
	if err != nil {
		return err
	}

	criteria := aggregate.Criteria{
		Field:   aggregate.StatusField,
		From:    queryFrom,
		NotFrom: queryNotFrom,
		To:      queryTo,
		NotTo:   queryNotTo,
	}
	if criteria.Since, err = parseBound(querySince, "since"); err != nil {
		return err
	}
	if criteria.Until, err = parseBound(queryUntil, "until"); err != nil {
		return err
	}

	ctx := context.Background()
	issues, err := client.SearchIssues(ctx, jql, queryMax)
	if err != nil {
		return err
	}

	agg := aggregate.New(client, cfg.Aggregation, logger)
	limit := aggregate.ClampLimit(queryLimit)

	var result *aggregate.Result
	if queryDiscover {
		result, err = agg.DiscoverTransitions(ctx, issues, criteria, limit)
	} else {
		result, err = agg.MoversByUser(ctx, issues, criteria, limit)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func parseBound(val, name string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, val); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid --%s value %q", name, val)
}
