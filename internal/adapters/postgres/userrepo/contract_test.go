package userrepo

import (
	"testing"

	"github.com/penguicon/contrax/internal/adapters/contracttest"
	"github.com/penguicon/contrax/internal/adapters/postgres/testutil"
	userrepoport "github.com/penguicon/contrax/internal/ports/out/userrepo"
)

func TestContract_PostgresUserRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunUserRepo(t, func(t *testing.T) (userrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
