// Package app wires configuration into storage, hashing and services.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/storefront/backoffice/internal/cli"
	"github.com/storefront/backoffice/internal/core/ports"
	"github.com/storefront/backoffice/internal/core/service"
	"github.com/storefront/backoffice/internal/health"
	mongostore "github.com/storefront/backoffice/internal/infrastructure/db/mongo"
	pgstore "github.com/storefront/backoffice/internal/infrastructure/db/postgres"
	redisstore "github.com/storefront/backoffice/internal/infrastructure/db/redis"
	"github.com/storefront/backoffice/internal/pkg/config"
	"github.com/storefront/backoffice/internal/security/password"
)

// repositories is what a storage driver contributes.
type repositories struct {
	categories ports.CategoryRepository
	employees  ports.EmployeeRepository
}

// Factory returns a cli.Factory that connects according to cfg.
func Factory(cfg *config.Config) cli.Factory {
	return func(ctx context.Context, log zerolog.Logger) (*cli.Services, func(), error) {
		return Build(ctx, cfg, log)
	}
}

// Build connects the configured storage driver and, when REDIS_ADDR is set,
// the login throttle. The returned func closes every connection opened.
//
// When a backend cannot be reached Build still returns Services holding only
// a Health checker, with the failed dependency registered as unhealthy,
// together with the connect error.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*cli.Services, func(), error) {
	var closers []func()
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	hasher, err := password.New(password.Scheme(cfg.Password.Scheme), password.WithBcryptCost(cfg.Password.BcryptCost))
	if err != nil {
		return nil, nil, fmt.Errorf("password hasher: %w", err)
	}

	checker := health.NewChecker(0)

	repos, closeStore, storeErr := openStorage(ctx, cfg, checker)
	if storeErr != nil {
		checker.Register(storageProbeName(cfg.Storage), unreachable(storeErr))
	} else {
		closers = append(closers, closeStore)
	}

	var (
		throttle service.LoginThrottle
		redisErr error
	)
	if cfg.Redis.Addr != "" {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			redisErr = err
			checker.Register("redis", unreachable(err))
		} else {
			closers = append(closers, func() { _ = client.Close() })
			checker.Register("redis", redisProbe(client))
			throttle = redisstore.NewLoginThrottle(client, cfg.Login.MaxAttempts, cfg.Login.Window)
		}
	} else {
		log.Debug().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	if err := errors.Join(storeErr, redisErr); err != nil {
		return &cli.Services{Health: checker}, release, err
	}

	log.Debug().
		Str("storage", cfg.Storage).
		Str("password_scheme", string(hasher.Scheme())).
		Msg("services wired")

	return &cli.Services{
		Categories: service.NewCategoryService(repos.categories, log),
		Employees:  service.NewEmployeeService(repos.employees, hasher, throttle, log),
		Health:     checker,
	}, release, nil
}

// storageProbeName is the dependency name the health report uses for driver.
func storageProbeName(driver string) string {
	switch driver {
	case config.DriverMongo:
		return "mongodb"
	case config.DriverPostgres:
		return "postgres"
	default:
		return driver
	}
}

// unreachable reports the error a dependency failed to connect with.
func unreachable(err error) health.Probe {
	return func(context.Context) error { return err }
}

func openStorage(ctx context.Context, cfg *config.Config, checker *health.Checker) (repositories, func(), error) {
	switch cfg.Storage {
	case config.DriverPostgres:
		pool, err := pgstore.Connect(ctx, pgstore.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return repositories{}, nil, err
		}
		if err := pgstore.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return repositories{}, nil, err
		}
		checker.Register(storageProbeName(config.DriverPostgres), pool.Ping)
		return repositories{
			categories: pgstore.NewCategoryRepository(pool),
			employees:  pgstore.NewEmployeeRepository(pool),
		}, pool.Close, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return repositories{}, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }

		seq := mongostore.NewSequence(db)
		categories := mongostore.NewCategoryRepository(db, seq)
		employees := mongostore.NewEmployeeRepository(db, seq)
		if err := categories.EnsureIndexes(ctx); err != nil {
			closeFn()
			return repositories{}, nil, err
		}
		if err := employees.EnsureIndexes(ctx); err != nil {
			closeFn()
			return repositories{}, nil, err
		}
		checker.Register(storageProbeName(config.DriverMongo), func(ctx context.Context) error {
			if err := client.Ping(ctx, nil); err != nil {
				return err
			}
			return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
		})
		return repositories{categories: categories, employees: employees}, closeFn, nil

	default:
		return repositories{}, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
	}
}

func redisProbe(client *redis.Client) health.Probe {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
