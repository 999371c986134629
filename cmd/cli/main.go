// Command cli runs a security assessment of one HTTP API endpoint and
// writes the report as markdown and JSON.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vaptprobe/vaptprobe/pkg/config"
	"github.com/vaptprobe/vaptprobe/pkg/defaults"
	"github.com/vaptprobe/vaptprobe/pkg/payloads"
	"github.com/vaptprobe/vaptprobe/pkg/probeconfig"
	"github.com/vaptprobe/vaptprobe/pkg/progress"
	"github.com/vaptprobe/vaptprobe/pkg/report"
	"github.com/vaptprobe/vaptprobe/pkg/suite"
	"github.com/vaptprobe/vaptprobe/pkg/target"
	"github.com/vaptprobe/vaptprobe/pkg/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	tgt, err := target.New(cfg.TargetURL, cfg.Method, cfg.RequestHeaders(), cfg.Body)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	catalog := payloads.Default()
	if cfg.PayloadFile != "" {
		catalog, err = payloads.LoadFile(cfg.PayloadFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	printer := ui.NewPrinter(os.Stdout, cfg.NoColor)
	if !cfg.Silent {
		printer.Banner(defaults.Version)
	}

	var hooks progress.Multi
	if !cfg.Silent {
		hooks = append(hooks, printer.Hook())
	}
	if cfg.MetricsPort > 0 {
		prom, err := progress.NewPrometheusHook(progress.PrometheusOptions{Port: cfg.MetricsPort})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		hooks = append(hooks, prom)
		logger.Info("metrics endpoint up", slog.String("addr", prom.MetricsAddr()))
	}
	defer hooks.Close()

	suiteCfg := suite.Config{
		Base: probeconfig.Base{
			Timeout:    cfg.Timeout,
			Logger:     logger,
			OnProgress: hooks,
		},
		Concurrency:        cfg.Concurrency,
		BurstSize:          cfg.BurstSize,
		Catalog:            catalog,
		InsecureSkipVerify: cfg.SkipVerify,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := suite.New(suiteCfg).Run(ctx, tgt, cfg.Categories)
	if err != nil && rep == nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if !cfg.Silent {
		printer.Summary(rep)
	}

	if err := writeReports(cfg, rep); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if rep.Vulnerable() {
		return 1
	}
	return 0
}

// writeReports writes vapt_report_<timestamp>.json and, unless -json was
// given, the matching markdown file.
func writeReports(cfg *config.Config, rep *report.Report) error {
	stamp := time.Now().Format("20060102_150405")
	base := filepath.Join(cfg.OutputDir, "vapt_report_"+stamp)

	jsonFile, err := os.Create(base + ".json")
	if err != nil {
		return err
	}
	defer jsonFile.Close()
	if err := rep.WriteJSON(jsonFile); err != nil {
		return err
	}
	if !cfg.Silent {
		fmt.Println("report written:", base+".json")
	}

	if cfg.JSONOnly {
		return nil
	}

	mdFile, err := os.Create(base + ".md")
	if err != nil {
		return err
	}
	defer mdFile.Close()
	if err := rep.WriteMarkdown(mdFile); err != nil {
		return err
	}
	if !cfg.Silent {
		fmt.Println("report written:", base+".md")
	}
	return nil
}
