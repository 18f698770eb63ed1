package migrate

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/internal/config"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	verifierMigrationSource = "modules/verifier/database/postgresql/migrations"
	verifierMigrationTable  = "verifier_schema_migrations"
)

var supportedDrivers = map[string]struct{}{
	"postgres":   {},
	"postgresql": {},
}

type migrateOptions struct {
	DatabaseURL string
	Source      string
	Verbose     bool
}

func (o *migrateOptions) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.Source, "source", verifierMigrationSource, "Path to migrations directory")
	flags.StringVar(&o.DatabaseURL, "database", "", "Database url to run migration on, default is the configured verifier.postgres")
	flags.BoolVar(&o.Verbose, "verbose", false, "Log every applied migration")
}

// newMigrate creates a Migrate instance for the audit log schema.
func (o *migrateOptions) newMigrate(ctx context.Context) (*migrate.Migrate, error) {
	rawURL := o.DatabaseURL
	if rawURL == "" {
		rawURL = config.Load().Verifier.Postgres.URL
	}
	if rawURL == "" {
		return nil, errors.New("--database or verifier.postgres.url is required")
	}
	databaseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database URL")
	}
	if _, ok := supportedDrivers[databaseURL.Scheme]; !ok {
		return nil, errors.Errorf("unsupported database driver: %s", databaseURL.Scheme)
	}

	newDatabaseURL := cloneURLWithQuery(databaseURL, url.Values{"x-migrations-table": {verifierMigrationTable}})
	m, err := migrate.New("file://"+o.Source, newDatabaseURL.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Migrate instance")
	}
	m.Log = &migrateLogger{
		ctx:     logger.WithContext(ctx, slogx.String("package", "migrate")),
		verbose: o.Verbose,
	}
	return m, nil
}

func cloneURLWithQuery(u *url.URL, newQuery url.Values) *url.URL {
	clone := *u
	query := clone.Query()
	for key, values := range newQuery {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	clone.RawQuery = query.Encode()
	return &clone
}
