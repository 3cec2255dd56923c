package submissionrepo

import (
	"testing"

	"github.com/penguicon/contrax/internal/adapters/contracttest"
	"github.com/penguicon/contrax/internal/adapters/postgres/testutil"
	pguserrepo "github.com/penguicon/contrax/internal/adapters/postgres/userrepo"
	submissionrepoport "github.com/penguicon/contrax/internal/ports/out/submissionrepo"
	userrepoport "github.com/penguicon/contrax/internal/ports/out/userrepo"
)

func TestContract_PostgresSubmissionRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunSubmissionRepo(
		t,
		func(t *testing.T) (userrepoport.Repository, func()) {
			t.Helper()
			return pguserrepo.NewRepo(pool), nil
		},
		func(t *testing.T) (submissionrepoport.Repository, func()) {
			t.Helper()
			return NewRepo(pool), nil
		},
	)
}
