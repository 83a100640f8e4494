package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"restaurant-pos/app"
	"restaurant-pos/config"
	"restaurant-pos/db"
	"restaurant-pos/models"
	"restaurant-pos/paymentproxy"
	"restaurant-pos/repository"
	"restaurant-pos/service"
)

func main() {
	cliApp := &cli.App{
		Name:  "restaurant-pos",
		Usage: "restaurant point of sale API",
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.ConfigureLogging()
			c.App.Metadata["config"] = cfg
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the POS HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply database migrations",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply all pending migrations", Action: migrateAction("up")},
					{Name: "down", Usage: "roll back the last migration", Action: migrateAction("down")},
				},
			},
			{
				Name:   "payment-proxy",
				Usage:  "run the payment gateway proxy",
				Action: paymentProxy,
			},
			{
				Name:  "create-user",
				Usage: "create a staff or admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "role", Value: string(models.RoleStaff), Usage: "admin or staff"},
				},
				Action: createUser,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func configFrom(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func serve(c *cli.Context) error {
	cfg := configFrom(c)
	ctx, stop := signalContext(c.Context)
	defer stop()

	a, err := app.Initialize(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Printf("POS API listening on port %s (env=%s)", cfg.Port, cfg.Env)
	return a.Serve(ctx)
}

func migrateAction(direction string) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := configFrom(c)
		if err := db.InitDB(c.Context, cfg.Database); err != nil {
			return errors.Wrap(err, "failed to initialize database")
		}
		defer db.CloseDB()
		return db.Migrate(direction)
	}
}

func paymentProxy(c *cli.Context) error {
	cfg := configFrom(c)
	ctx, stop := signalContext(c.Context)
	defer stop()

	if cfg.Proxy.SaltKey == "" {
		return errors.New("PHONEPE_SALT_KEY is not set")
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Proxy.Port,
		Handler:           paymentproxy.Router(paymentproxy.NewClient(cfg.Proxy, nil)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("PhonePe application listening on port %s", cfg.Proxy.Port)
	return app.ListenAndShutdown(ctx, srv)
}

func createUser(c *cli.Context) error {
	cfg := configFrom(c)
	if err := db.InitDB(c.Context, cfg.Database); err != nil {
		return errors.Wrap(err, "failed to initialize database")
	}
	defer db.CloseDB()

	auth := service.NewAuthService(repository.NewUserRepository(), cfg.AuthTokenTTL)
	user, err := auth.CreateUser(c.Context, c.String("email"), c.String("password"), models.Role(c.String("role")))
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"id": user.ID, "email": user.Email, "role": user.Role}).Info("user created")
	return nil
}
