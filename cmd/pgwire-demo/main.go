// Command pgwire-demo is a small CLI over the pgwire client library: it
// loads a YAML config, runs one-off queries, and reports pool stats.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/polarwire/pgwire"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "pgwire-demo",
		Short: "Exercise the pgwire client against a PostgreSQL server",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/pgwire.yaml", "path to configuration file")

	root.AddCommand(connectCmd(), queryCmd(), poolStatsCmd())

	if err := root.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func loadConfig() (pgwire.Config, error) {
	cfg, err := pgwire.Load(configPath)
	if err != nil {
		return pgwire.Config{}, err
	}
	return *cfg, nil
}

func connectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Dial once and disconnect",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			spinner, _ := pterm.DefaultSpinner.Start("dialing " + cfg.Host)
			conn, err := pgwire.Connect(cmd.Context(), cfg, logger)
			if err != nil {
				spinner.Fail(err)
				return err
			}
			spinner.Success("connected")
			defer conn.Close()

			pterm.Info.Printfln("state=%s", conn.State())
			return nil
		},
	}
}

func queryCmd() *cobra.Command {
	var sql string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one SQL statement through the Simple query protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			conn, err := pgwire.Connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			res, err := conn.Run(sql)
			if err != nil {
				return err
			}
			renderResult(res)
			return nil
		},
	}
	cmd.Flags().StringVar(&sql, "sql", "", "SQL statement to run")
	cmd.MarkFlagRequired("sql")
	return cmd
}

func renderResult(res pgwire.Result) {
	switch res.Kind {
	case pgwire.ResultSelect, pgwire.ResultExplain:
		table := pterm.TableData{pgwire.DescribeColumns(res)}
		for _, row := range res.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				if v == nil {
					cells[i] = "<null>"
				} else {
					cells[i] = string(v)
				}
			}
			table = append(table, cells)
		}
		pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	case pgwire.ResultCommand:
		pterm.Success.Printfln("%s (%d rows affected)", res.CommandTag, res.RowsAffected)
	default:
		pterm.Success.Println(res.CommandTag)
	}
}

func poolStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pool-stats",
		Short: "Start a pool, print stats every 2 seconds, and exit on Ctrl-C",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			pool, err := pgwire.NewPool(ctx, "pgwire-demo", cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			admin := pgwire.NewAdminServer("pgwire-demo", pool)
			if err := admin.Start("127.0.0.1:8081"); err != nil {
				pterm.Warning.Printfln("admin server not started: %v", err)
			} else {
				pterm.Info.Println("admin server listening on http://127.0.0.1:8081/stats")
				defer admin.Stop()
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()

			for {
				stats := pool.Stats()
				pterm.Info.Printfln("active=%d idle=%d total=%d waiting=%d",
					stats.Active, stats.Idle, stats.Total, stats.Waiting)
				select {
				case <-sigCh:
					return nil
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}
