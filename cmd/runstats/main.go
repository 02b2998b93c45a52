// cmd/runstats/main.go
// Operator CLI for run totals, goals and on-demand achievement evaluation.
//
// Usage:
//
//	go run ./cmd/runstats goals --member 3
//	go run ./cmd/runstats summary --member 3 --start 2024-01-01 --end 2024-12-31
//	go run ./cmd/runstats period --start 2024-01-01 --end 2024-01-31 --json
//	go run ./cmd/runstats period --start 2024-01-01 --end 2024-01-31 --list
//	go run ./cmd/runstats evaluate --on 2024-03-31
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/padraicbc/runcrew/clock"
	"github.com/padraicbc/runcrew/config"
	bundb "github.com/padraicbc/runcrew/db"
	"github.com/padraicbc/runcrew/jobs"
	applog "github.com/padraicbc/runcrew/logger"
	"github.com/padraicbc/runcrew/models"
	"github.com/padraicbc/runcrew/service"
	"github.com/padraicbc/runcrew/store"
)

var rootCmd = &cobra.Command{
	Use:           "runstats",
	Short:         "Run totals, goals and achievement evaluation",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// services bundles what every subcommand needs.
type services struct {
	goals   *service.GoalService
	records *service.RecordService
	log     *zap.Logger
}

func main() {
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().Bool("debug", false, "verbose logging")
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(goalsCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(periodCmd())
	rootCmd.AddCommand(evaluateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func withServices(ctx context.Context, fn func(context.Context, *services) error) error {
	cfg := config.Load()
	log, err := applog.NewCLI(viper.GetBool("debug"))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db := bundb.Setup(cfg)
	defer db.Close()
	if err := bundb.CreateTables(ctx, db); err != nil {
		return err
	}

	goalStore := store.NewGoals(db)
	recordStore := store.NewRecords(db)
	return fn(ctx, &services{
		goals:   service.NewGoalService(goalStore, recordStore, log),
		records: service.NewRecordService(recordStore, goalStore, store.NewMembers(db), log),
		log:     log,
	})
}

func goalsCmd() *cobra.Command {
	var member int64
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List goals, optionally for one member",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, s *services) error {
				var (
					goals []service.GoalResponse
					err   error
				)
				if member > 0 {
					goals, err = s.goals.ListForUser(ctx, member)
				} else {
					goals, err = s.goals.List(ctx)
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(goals)
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Member", "Start", "End", "Distance km", "Pace min/km", "Time", "Achieved"})
				for _, g := range goals {
					tw.AppendRow(table.Row{
						g.ID, g.UserID, g.StartDate, g.EndDate,
						g.TargetDistance, g.TargetPace, clock.FormatRunningTime(g.TargetTime), g.Achieved,
					})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&member, "member", 0, "member id")
	return cmd
}

func summaryCmd() *cobra.Command {
	var (
		member     int64
		start, end string
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totals for one member, over all time or a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if member <= 0 {
				return fmt.Errorf("--member is required")
			}
			return withServices(cmd.Context(), func(ctx context.Context, s *services) error {
				if start == "" && end == "" {
					tot, err := s.records.CalculateTotals(ctx, member)
					if err != nil {
						return err
					}
					if viper.GetBool("json") {
						return printJSON(tot)
					}
					renderTotals(member, "all time", tot.RunCount, tot.Distance, tot.RunningTimeText, tot.PaceText)
					return nil
				}

				from, to, err := parseRange(start, end)
				if err != nil {
					return err
				}
				sum, err := s.records.PeriodSummary(ctx, member, from, to)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(sum)
				}
				renderTotals(member, from.String()+" .. "+to.String(), sum.RunCount, sum.Distance, sum.RunningTimeText, sum.PaceText)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&member, "member", 0, "member id")
	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD")
	return cmd
}

func periodCmd() *cobra.Command {
	var (
		start, end string
		list       bool
	)
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Club-wide distance and time for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(start, end)
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(ctx context.Context, s *services) error {
				if list {
					return listPeriod(ctx, s, from, to)
				}
				km, err := s.records.TotalDistanceForPeriod(ctx, from, to)
				if err != nil {
					return err
				}
				sec, err := s.records.TotalTimeForPeriod(ctx, from, to)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{
						"start":            from,
						"end":              to,
						"totalDistance":    km,
						"totalRunningTime": sec,
					})
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Start", "End", "Distance km", "Time"})
				tw.AppendRow(table.Row{from, to, km, clock.FormatRunningTime(sec)})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD")
	cmd.Flags().BoolVar(&list, "list", false, "print every record in the range instead of totals")
	return cmd
}

func listPeriod(ctx context.Context, s *services, from, to models.Date) error {
	recs, err := s.records.RecordsForPeriod(ctx, from, to)
	if err != nil {
		return err
	}
	if viper.GetBool("json") {
		return printJSON(recs)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Member", "Goal", "Date", "Distance km", "Time", "Pace"})
	for _, r := range recs {
		tw.AppendRow(table.Row{
			r.ID, r.UserID, r.GoalID, r.RunningDate, r.Distance,
			clock.FormatRunningTime(r.RunningTime), clock.FormatPace(r.Pace),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "Runs", len(recs)})
	tw.Render()
	return nil
}

func evaluateCmd() *cobra.Command {
	var on string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Mark goals achieved now instead of waiting for the nightly job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, s *services) error {
				job := jobs.NewAchievement(s.goals, s.log)

				var (
					n   int
					err error
				)
				if on == "" {
					n, err = job.Run(ctx)
				} else {
					day, perr := models.ParseDate(on)
					if perr != nil {
						return perr
					}
					n, err = job.RunOn(ctx, day)
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]int{"achieved": n})
				}
				fmt.Printf("%d goal(s) achieved\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&on, "on", "", "day to evaluate, YYYY-MM-DD (default yesterday)")
	return cmd
}

func renderTotals(member int64, span string, runs int, km float64, runningTime, pace string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Member", "Span", "Runs", "Distance km", "Time", "Avg pace"})
	tw.AppendRow(table.Row{member, span, runs, km, runningTime, pace})
	tw.Render()
}

func parseRange(start, end string) (models.Date, models.Date, error) {
	from, err := models.ParseDate(start)
	if err != nil {
		return models.Date{}, models.Date{}, fmt.Errorf("--start: %w", err)
	}
	to, err := models.ParseDate(end)
	if err != nil {
		return models.Date{}, models.Date{}, fmt.Errorf("--end: %w", err)
	}
	return from, to, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
