package region

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/model"
)

// fakeStore answers queries by the first registered substring they contain.
type fakeStore struct {
	responses []fakeResponse
	queries   []string
	databases []string
}

type fakeResponse struct {
	match string
	frame *frame.Frame
	err   error
}

func (s *fakeStore) on(match string, cols []string, rows ...[]any) *fakeStore {
	f := frame.New(model.LevelNone, cols...)
	f.Rows = rows
	s.responses = append(s.responses, fakeResponse{match: match, frame: f})
	return s
}

func (s *fakeStore) fail(match string, err error) *fakeStore {
	s.responses = append(s.responses, fakeResponse{match: match, err: err})
	return s
}

func (s *fakeStore) Dialect() db.Dialect { return db.SQLServer }

func (s *fakeStore) Connect(_ context.Context, database string) (db.Conn, error) {
	s.databases = append(s.databases, database)
	return &fakeConn{store: s}, nil
}

// ran reports whether any executed query contains substr.
func (s *fakeStore) ran(substr string) bool {
	for _, q := range s.queries {
		if strings.Contains(q, substr) {
			return true
		}
	}
	return false
}

type fakeConn struct{ store *fakeStore }

func (c *fakeConn) Query(_ context.Context, q string) (*frame.Frame, error) {
	c.store.queries = append(c.store.queries, q)
	for _, r := range c.store.responses {
		if strings.Contains(q, r.match) {
			if r.err != nil {
				return nil, &db.QueryExecutionError{Query: q, Err: r.err}
			}
			return r.frame.Clone(), nil
		}
	}
	return nil, &db.QueryExecutionError{Query: q, Err: eris.New("invalid object name")}
}

func (c *fakeConn) Exec(_ context.Context, stmt string) error {
	c.store.queries = append(c.store.queries, stmt)
	return nil
}

func (c *fakeConn) Dialect() db.Dialect { return db.SQLServer }

func (c *fakeConn) Close() error { return nil }

func row(vals ...any) []any { return vals }

var regionCols = []string{"RegionName", "HasEqHazard", "HasFlHazard", "HasHuHazard", "HasTsHazard"}
