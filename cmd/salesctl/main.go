package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/odyssey-erp/salesboard/cmd/salesctl/cli"
	"github.com/odyssey-erp/salesboard/internal/app"
	"github.com/odyssey-erp/salesboard/internal/salesreport"
	"github.com/odyssey-erp/salesboard/internal/salesreport/source"
)

const usage = `usage:
  salesctl jobs trigger <report:warmup|report:invalidate>
  salesctl jobs stats
  salesctl export -from YYYY-MM-DD -to YYYY-MM-DD [-format csv|xlsx] [-out file] [-sort table:column[:desc]]...`

type sortFlags []cli.SortSpec

func (s *sortFlags) String() string { return fmt.Sprint(len(*s)) }

func (s *sortFlags) Set(raw string) error {
	spec, err := cli.ParseSortSpec(raw)
	if err != nil {
		return err
	}
	*s = append(*s, spec)
	return nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping salesctl")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger, os.Args[1:]); err != nil {
		logger.Error("salesctl", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	switch args[0] {
	case "jobs":
		return runJobs(ctx, cfg, args[1:])
	case "export":
		return runExport(ctx, cfg, logger, args[1:])
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing jobs subcommand\n%s", usage)
	}
	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
	defer func() { _ = jobsCLI.Close() }()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return fmt.Errorf("missing job name\n%s", usage)
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n", stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	default:
		return fmt.Errorf("unknown jobs subcommand %q\n%s", args[0], usage)
	}
	return nil
}

func runExport(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	today := time.Now().UTC().Format(salesreport.DateLayout)
	from := fs.String("from", today, "start date")
	to := fs.String("to", "", "end date, defaults to -from")
	orderType := fs.String("order-type", "", "order type filter")
	category := fs.String("category", "", "category filter")
	format := fs.String("format", cli.FormatCSV, "csv or xlsx")
	out := fs.String("out", "", "output file, stdout when empty")
	var sorts sortFlags
	fs.Var(&sorts, "sort", "table:column[:desc], repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*to) == "" {
		*to = *from
	}
	fromDate, err := time.Parse(salesreport.DateLayout, *from)
	if err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}
	toDate, err := time.Parse(salesreport.DateLayout, *to)
	if err != nil {
		return fmt.Errorf("parse -to: %w", err)
	}

	posClient, err := source.NewClient(source.Config{
		BaseURL:    cfg.POSAPIURL,
		Token:      cfg.POSAPIToken,
		Timeout:    cfg.POSAPITimeout,
		RetryCount: cfg.POSAPIRetries,
	}, logger)
	if err != nil {
		return err
	}
	service := salesreport.NewService(posClient, nil, logger, salesreport.ServiceConfig{MaxRange: cfg.ReportMaxRange})

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return cli.NewExportCLI(service).Run(ctx, cli.ExportOptions{
		Filter: salesreport.Filter{From: fromDate, To: toDate, OrderType: *orderType, Category: *category},
		Format: *format,
		Sorts:  sorts,
	}, w)
}
