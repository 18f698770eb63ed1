package cmd

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/internal/config"
	"github.com/gaze-network/consensus-verifier/internal/postgres"
	"github.com/gaze-network/consensus-verifier/modules/verifier"
	"github.com/gaze-network/consensus-verifier/modules/verifier/btcclient"
	verifierpostgres "github.com/gaze-network/consensus-verifier/modules/verifier/repository/postgres"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

// postgresPool closes the pool on injector shutdown.
type postgresPool struct {
	*pgxpool.Pool
}

func (p postgresPool) Shutdown() {
	p.Close()
}

func newInjector(ctx context.Context, conf config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, ctx)

	// Initialize Bitcoin RPC client
	do.Provide(injector, func(i do.Injector) (*rpcclient.Client, error) {
		conf := do.MustInvoke[config.Config](i)

		client, err := rpcclient.New(&rpcclient.ConnConfig{
			Host:         conf.BitcoinNode.Host,
			User:         conf.BitcoinNode.User,
			Pass:         conf.BitcoinNode.Pass,
			DisableTLS:   conf.BitcoinNode.DisableTLS,
			HTTPPostMode: true,
		}, nil)
		if err != nil {
			return nil, errors.Wrap(err, "invalid Bitcoin node configuration")
		}

		// Check Bitcoin RPC connection
		{
			start := time.Now()
			logger.InfoContext(ctx, "Connecting to Bitcoin Core RPC Server...", slogx.String("host", conf.BitcoinNode.Host))
			if err := client.Ping(); err != nil {
				return nil, errors.Wrapf(errs.Unavailable, "can't connect to Bitcoin Core RPC Server %q: %v", conf.BitcoinNode.Host, err)
			}
			logger.InfoContext(ctx, "Connected to Bitcoin Core RPC Server", slogx.Duration("latency", time.Since(start)))
		}

		return client, nil
	})

	// Initialize audit log database
	do.Provide(injector, func(i do.Injector) (postgresPool, error) {
		conf := do.MustInvoke[config.Config](i)

		pool, err := postgres.NewPool(ctx, conf.Verifier.Postgres)
		if err != nil {
			return postgresPool{}, errors.Wrap(err, "can't create postgres connection pool")
		}
		return postgresPool{pool}, nil
	})

	// Initialize consensus verification engine
	do.Provide(injector, func(i do.Injector) (*bitcoinconsensus.Verifier, error) {
		conf := do.MustInvoke[config.Config](i)

		engine, err := newEngine(conf)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		logger.InfoContext(ctx, "Initialized consensus verification engine",
			slogx.String("engine", engine.Name()),
			slogx.Int("version", engine.Version()),
		)
		return bitcoinconsensus.New(engine), nil
	})

	// Initialize verifier service
	do.Provide(injector, func(i do.Injector) (*verifier.Service, error) {
		conf := do.MustInvoke[config.Config](i)

		opts := []verifier.Option{
			verifier.WithNetwork(conf.Network),
			verifier.WithConcurrency(conf.Verifier.Concurrency),
		}
		if conf.BitcoinNode.Enabled() {
			client, err := do.Invoke[*rpcclient.Client](i)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			nodeDg, err := btcclient.New(client, conf.Verifier.PrevOutCacheSize)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			opts = append(opts, verifier.WithBitcoinNode(nodeDg))
		}
		if conf.Verifier.Postgres.Enabled() {
			pool, err := do.Invoke[postgresPool](i)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			opts = append(opts, verifier.WithResultRecorder(verifierpostgres.NewRepository(pool.Pool)))
		}

		return verifier.New(do.MustInvoke[*bitcoinconsensus.Verifier](i), opts...), nil
	})

	return injector
}
