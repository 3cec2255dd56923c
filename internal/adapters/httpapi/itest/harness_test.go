package itest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/penguicon/contrax/internal/adapters/httpapi"
	memclock "github.com/penguicon/contrax/internal/adapters/memory/clock"
	memidempotency "github.com/penguicon/contrax/internal/adapters/memory/idempotency"
	memsubmissionrepo "github.com/penguicon/contrax/internal/adapters/memory/submissionrepo"
	memuserrepo "github.com/penguicon/contrax/internal/adapters/memory/userrepo"
	pgidempotency "github.com/penguicon/contrax/internal/adapters/postgres/idempotency"
	pgsubmissionrepo "github.com/penguicon/contrax/internal/adapters/postgres/submissionrepo"
	postgres_testutil "github.com/penguicon/contrax/internal/adapters/postgres/testutil"
	pguserrepo "github.com/penguicon/contrax/internal/adapters/postgres/userrepo"
	"github.com/penguicon/contrax/internal/app/submissions"
	"github.com/penguicon/contrax/internal/domain"
	"github.com/penguicon/contrax/internal/platform/seed"
	idempotencyport "github.com/penguicon/contrax/internal/ports/out/idempotency"
	submissionrepoport "github.com/penguicon/contrax/internal/ports/out/submissionrepo"
	userrepoport "github.com/penguicon/contrax/internal/ports/out/userrepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

// fixture is the board every test starts from.
var fixture = seed.File{
	Users: []seed.User{
		{ID: 1, Name: "Alice", Points: 2},
		{ID: 2, Name: "Bob", Points: 0},
		{ID: 3, Name: "Stella", Staff: true},
	},
	Submissions: []seed.Submission{
		{ID: 10, Title: "Knot tying", Submitter: 1, Presenters: []string{"Alice"}, Duration: 1, FollowUpState: 0},
		{ID: 11, Title: "Chainmail", Duration: 4, FollowUpState: 2, RSVPs: []int{3}},
		{ID: 12, Title: "Dropped", Duration: 2, FollowUpState: 3},
	},
}

type testServer struct {
	baseURL string
	client  *http.Client
	users   userrepoport.Repository
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var (
		submissionRepo submissionrepoport.Repository
		userRepo       userrepoport.Repository
		idemStore      idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		submissionRepo = pgsubmissionrepo.NewRepo(pool)
		userRepo = pguserrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool)
	case backendMemory:
		submissionRepo = memsubmissionrepo.NewRepo()
		userRepo = memuserrepo.NewRepo()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	if err := fixture.Apply(context.Background(), userRepo, submissionRepo, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := submissions.NewService(submissionRepo, userRepo, clk, nil)
	api := httpapi.NewServer(svc, httpapi.ServerOptions{
		CacheMaxAge: time.Minute,
		Idempotency: idemStore,
		Now:         clk.Now,
	})

	srv := httptest.NewServer(httpapi.NewRouter(api))
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		users:   userRepo,
	}
}

func (s *testServer) do(t *testing.T, method string, path string, viewer int) (int, []byte, http.Header) {
	t.Helper()
	return s.doWithKey(t, method, path, viewer, "")
}

func (s *testServer) doWithKey(t *testing.T, method string, path string, viewer int, idemKey string) (int, []byte, http.Header) {
	t.Helper()

	req, err := http.NewRequest(method, s.baseURL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if viewer != 0 {
		req.Header.Set(httpapi.ViewerHeader, strconv.Itoa(viewer))
	}
	if idemKey != "" {
		req.Header.Set(httpapi.IdempotencyKeyHeader, idemKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

func (s *testServer) points(t *testing.T, id int) int {
	t.Helper()
	u, err := s.users.Get(context.Background(), domain.UserID(id))
	if err != nil {
		t.Fatalf("get user %d: %v", id, err)
	}
	return u.Points
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}
