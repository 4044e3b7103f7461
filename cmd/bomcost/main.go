package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/vsinha/bomcost/pkg/config"
	"github.com/vsinha/bomcost/pkg/interfaces/cli/commands"
	"github.com/vsinha/bomcost/pkg/log"
)

type executor interface {
	Execute(ctx context.Context) error
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "materials",
			Usage:   "Path to raw material catalog CSV file",
			EnvVars: []string{"BOMCOST_MATERIALS"},
		},
		&cli.StringFlag{
			Name:    "bom",
			Usage:   "Path to BOM CSV file",
			EnvVars: []string{"BOMCOST_BOM"},
		},
		&cli.StringFlag{
			Name:    "sales",
			Usage:   "Path to sales history CSV file",
			EnvVars: []string{"BOMCOST_SALES"},
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: text, json",
			Value: "text",
		},
	}
}

func main() {
	var (
		settings *config.Config
		registry = prometheus.NewRegistry()
	)

	setup := func(c *cli.Context) error {
		var err error
		settings, err = config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log.SetLevel(settings.App.LogLevel)
		if c.Bool("verbose") {
			log.SetLevel("debug")
		}
		if settings.App.LogFormat == "json" {
			log.UseJSON()
		}

		ctx, correlationID := log.WithCorrelationID(c.Context)
		c.Context = ctx
		log.ForContext(ctx).WithField("command", c.Command.Name).Debugf("starting run %s", correlationID)
		return nil
	}

	run := func(build func(c *cli.Context, cfg commands.Config) executor) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg := commands.Config{
				Sources: commands.Sources{
					MaterialsFile: c.String("materials"),
					BOMFile:       c.String("bom"),
					SalesFile:     c.String("sales"),
				},
				Format: c.String("format"),
				Writer: os.Stdout,
			}
			if err := build(c, cfg).Execute(c.Context); err != nil {
				return err
			}
			reportMetrics(c.Context, registry)
			return nil
		}
	}

	app := &cli.App{
		Name:  "bomcost",
		Usage: "Product costing, BOM weight roll-up and sales analysis",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "product",
				Usage: "Report per-unit weight and cost of products",
				Flags: append(sourceFlags(),
					&cli.StringSliceFlag{
						Name:  "code",
						Usage: "Product code to report (repeatable); all BOM products when omitted",
					},
				),
				Before: setup,
				Action: run(func(c *cli.Context, cfg commands.Config) executor {
					cfg.Products = c.StringSlice("code")
					return commands.NewProductCommand(cfg, settings, registry, log.ForContext(c.Context))
				}),
			},
			{
				Name:  "groups",
				Usage: "Report sales, cost and weight per customer group",
				Flags: append(sourceFlags(),
					&cli.BoolFlag{
						Name:  "board-breakdown",
						Usage: "Include corrugated board area by wall type",
					},
				),
				Before: setup,
				Action: run(func(c *cli.Context, cfg commands.Config) executor {
					cfg.BoardBreakdown = c.Bool("board-breakdown")
					return commands.NewGroupsCommand(cfg, settings, registry, log.ForContext(c.Context))
				}),
			},
			{
				Name:  "cohorts",
				Usage: "Report customer cohorts by first purchase month",
				Flags: append(sourceFlags(),
					&cli.StringFlag{
						Name:  "start",
						Usage: "First month or date to include (2006-01 or 2006-01-02)",
					},
					&cli.StringFlag{
						Name:  "end",
						Usage: "Last month or date to include (2006-01 or 2006-01-02)",
					},
				),
				Before: setup,
				Action: run(func(c *cli.Context, cfg commands.Config) executor {
					cfg.Start = c.String("start")
					cfg.End = c.String("end")
					return commands.NewCohortCommand(cfg, settings, registry, log.ForContext(c.Context))
				}),
			},
			{
				Name:  "generate",
				Usage: "Write a synthetic materials, BOM and sales scenario as CSV files",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Usage: "Output directory for generated files", Required: true},
					&cli.IntFlag{Name: "materials", Usage: "Number of raw materials", Value: 200},
					&cli.IntFlag{Name: "products", Usage: "Number of products", Value: 100},
					&cli.IntFlag{Name: "max-lines", Usage: "Maximum BOM lines per product", Value: 8},
					&cli.IntFlag{Name: "buyers", Usage: "Number of buyers", Value: 50},
					&cli.IntFlag{Name: "sales", Usage: "Number of sale records", Value: 5000},
					&cli.IntFlag{Name: "months", Usage: "Length of the sales history in months", Value: 12},
					&cli.Int64Flag{Name: "seed", Usage: "Random seed for reproducible generation"},
				},
				Before: setup,
				Action: func(c *cli.Context) error {
					cfg := commands.GenerateConfig{
						Materials: c.Int("materials"),
						Products:  c.Int("products"),
						MaxLines:  c.Int("max-lines"),
						Buyers:    c.Int("buyers"),
						Sales:     c.Int("sales"),
						Months:    c.Int("months"),
						OutputDir: c.String("output"),
						Seed:      c.Int64("seed"),
					}
					return commands.NewGenerateCommand(cfg, log.ForContext(c.Context)).Execute(c.Context)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// reportMetrics logs the cache counters collected during the run
func reportMetrics(ctx context.Context, registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		log.ForContext(ctx).WithError(err).Warn("failed to gather metrics")
		return
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			fields := log.Fields{"metric": family.GetName(), "value": metric.GetCounter().GetValue()}
			for _, label := range metric.GetLabel() {
				fields[label.GetName()] = label.GetValue()
			}
			log.ForContext(ctx).WithFields(fields).Debug("cache metrics")
		}
	}
}
