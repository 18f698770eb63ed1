package postgres

import (
	"github.com/gaze-network/consensus-verifier/internal/postgres"
	"github.com/gaze-network/consensus-verifier/modules/verifier/datagateway"
	"github.com/gaze-network/consensus-verifier/modules/verifier/repository/postgres/gen"
)

var _ datagateway.VerificationResultDataGateway = (*Repository)(nil)

type Repository struct {
	db      postgres.DB
	queries *gen.Queries
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db:      db,
		queries: gen.New(db),
	}
}
