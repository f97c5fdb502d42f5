package api

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/happyhourhub/backend/internal/db"
	"github.com/happyhourhub/backend/internal/metrics"
)

// stubConn answers the queries the save path issues. With preCheckHit the
// duplicate is caught by the membership pre-check; otherwise the pre-check
// sees nothing and the insert loses to the unique constraint, which is how a
// concurrent duplicate save lands.
type stubConn struct {
	preCheckHit bool
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("unexpected prepare: %s", query)
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return nil, fmt.Errorf("unexpected transaction")
}

func (c *stubConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	switch {
	case strings.Contains(query, "FROM happy_hours"):
		return &stubRows{cols: []string{"id"}, rows: [][]driver.Value{{int64(7)}}}, nil
	case strings.Contains(query, "SELECT id FROM user_interests"):
		if c.preCheckHit {
			return &stubRows{cols: []string{"id"}, rows: [][]driver.Value{{int64(5)}}}, nil
		}
		return &stubRows{cols: []string{"id"}}, nil
	case strings.Contains(query, "INSERT INTO user_interests"):
		return nil, &pq.Error{Code: "23505", Constraint: "user_interests_user_id_happy_hour_id_key"}
	}
	return nil, fmt.Errorf("unexpected query: %s", query)
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

type stubConnector struct {
	conn *stubConn
}

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{c.conn} }

type stubDriver struct {
	conn *stubConn
}

func (d stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func saveDuplicate(t *testing.T, preCheckHit bool) (*httptest.ResponseRecorder, *prometheus.Registry) {
	t.Helper()

	sqlDB := sql.OpenDB(stubConnector{conn: &stubConn{preCheckHit: preCheckHit}})
	t.Cleanup(func() { sqlDB.Close() })
	database := &db.DB{DB: sqlDB}

	reg := prometheus.NewRegistry()
	h := NewInterestHandlers(
		db.NewInterestRepository(database),
		db.NewListingRepository(database),
		metrics.NewCollector(reg),
	)

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/interests", strings.NewReader(`{"happy_hour_id":7}`)))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec, reg
}

// A duplicate save must render the same conflict whether the pre-check caught
// it or the unique constraint rejected the insert after the pre-check passed.
func TestCreateInterest_DuplicatePathsMatch(t *testing.T) {
	preChecked, preReg := saveDuplicate(t, true)
	raced, raceReg := saveDuplicate(t, false)

	if preChecked.Code != http.StatusConflict {
		t.Errorf("pre-check path: expected 409, got %d", preChecked.Code)
	}
	if raced.Code != http.StatusConflict {
		t.Errorf("constraint path: expected 409, got %d", raced.Code)
	}
	if preChecked.Body.String() != raced.Body.String() {
		t.Errorf("conflict envelopes differ:\npre-check:  %s\nconstraint: %s",
			preChecked.Body.String(), raced.Body.String())
	}
	if !strings.Contains(raced.Body.String(), "Happy hour already saved") {
		t.Errorf("unexpected conflict body: %s", raced.Body.String())
	}

	for name, reg := range map[string]*prometheus.Registry{"pre-check": preReg, "constraint": raceReg} {
		if got := conflictCount(t, reg); got != 1 {
			t.Errorf("%s path: expected 1 save conflict recorded, got %v", name, got)
		}
	}
}

func conflictCount(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "happyhour_interest_save_conflicts_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}
