package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tehraja/backend/internal/application/activity"
	catalogapp "github.com/tehraja/backend/internal/application/catalog"
	orderapp "github.com/tehraja/backend/internal/application/order"
	"github.com/tehraja/backend/internal/infrastructure/auth"
	"github.com/tehraja/backend/internal/infrastructure/config"
	"github.com/tehraja/backend/internal/infrastructure/logger"
	"github.com/tehraja/backend/internal/infrastructure/persistence"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const cliActor = "shopctl"

type configLoader func() (*config.Config, error)

// shop is the slice of the backend the commands need
type shop struct {
	db       *persistence.Database
	products *catalogapp.ProductService
	orders   *orderapp.OrderService
	log      *zap.Logger
}

func openShop(ctx context.Context, load configLoader, verbose bool) (*shop, error) {
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, err
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(level), 0)))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	logs := activity.NewLogService(persistence.NewGormActivityRepository(db.DB), nil, cfg.Shop.LogRetention, log)

	return &shop{
		db: db,
		products: catalogapp.NewProductService(productRepo, txScope, logs, nil, catalogapp.ProductServiceConfig{
			DefaultMinStock: cfg.Shop.DefaultMinStock,
		}, log),
		orders: orderapp.NewOrderService(persistence.NewGormOrderRepository(db.DB), txScope, logs, nil, log),
		log:    log,
	}, nil
}

func (s *shop) Close() error {
	_ = s.log.Sync()
	return s.db.Close()
}

// withShop opens the database for the duration of a command
func withShop(load configLoader, fn func(c *cli.Context, s *shop) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openShop(c.Context, load, c.Bool("verbose"))
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(c, s)
	}
}

func newCLI(load configLoader) *cli.App {
	return &cli.App{
		Name:  "shopctl",
		Usage: "Teh Raja maintenance commands",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log SQL and debug output"},
		},
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "create the default menu in an empty catalog",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "stock", Value: 20, Usage: "starting stock per product"},
					&cli.IntFlag{Name: "min-stock", Value: 5, Usage: "low stock threshold per product"},
				},
				Action: withShop(load, func(c *cli.Context, s *shop) error {
					n, err := s.products.SeedMenu(c.Context, c.Int("stock"), c.Int("min-stock"), cliActor)
					if err != nil {
						return err
					}
					if n == 0 {
						fmt.Fprintln(c.App.Writer, "catalog already has products, nothing seeded")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "seeded %d products\n", n)
					return nil
				}),
			},
			{
				Name:      "hash-password",
				Usage:     "print the bcrypt hash for a staff password",
				ArgsUsage: "[password]",
				Action: func(c *cli.Context) error {
					password := c.Args().First()
					if password == "" {
						line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
						if err != nil && line == "" {
							return errors.New("password required as argument or on stdin")
						}
						password = strings.TrimRight(line, "\r\n")
					}
					hash, err := auth.HashPassword(password)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, hash)
					return nil
				},
			},
			{
				Name:  "reset",
				Usage: "delete every order and activity log",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "confirm the deletion"},
				},
				Action: withShop(load, func(c *cli.Context, s *shop) error {
					if !c.Bool("yes") {
						return cli.Exit("refusing to delete data without --yes", 2)
					}
					resp, err := s.orders.Reset(c.Context, true, cliActor)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "deleted %d orders and %d log entries\n", resp.OrdersDeleted, resp.LogsDeleted)
					return nil
				}),
			},
		},
	}
}
