// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package database_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/ragstack/ragstack/internal/database"
)

type seedSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&seedSuite{})

// fakeSeedConn hands out a single transaction.
type fakeSeedConn struct {
	*testing.Stub
	tx *fakeTx
}

func (f *fakeSeedConn) Begin(ctx context.Context) (pgx.Tx, error) {
	f.AddCall("Begin")
	return f.tx, f.NextErr()
}

// fakeTx implements pgx.Tx over a stub; only the seed surface records.
type fakeTx struct {
	*testing.Stub
	tags       []string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.AddCall("Exec", sql, args)
	tag := "INSERT 0 1"
	if len(t.tags) > 0 {
		tag, t.tags = t.tags[0], t.tags[1:]
	}
	return pgconn.NewCommandTag(tag), t.NextErr()
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.AddCall("Commit")
	if err := t.NextErr(); err != nil {
		return err
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (t *fakeTx) Conn() *pgx.Conn                           { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects            { return pgx.LargeObjects{} }

func (t *fakeTx) CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

const catalogJSON = `[
  {
    "Id": 1,
    "Type": "Footwear",
    "Brand": "Daybird",
    "Name": "Wanderer Black Hiking Boots",
    "Description": "Daybird's Wanderer Hiking Boots in sleek black.",
    "Price": 109.99,
    "Embedding": [0.1, 0.2, 0.3]
  },
  {
    "Id": 2,
    "Type": "Climbing",
    "Brand": "Gravitator",
    "Name": "Ascent Climbing Harness",
    "Description": "A durable climbing harness.",
    "Price": 199.99,
    "Embedding": [0.4, 0.5, 0.6]
  }
]`

func (s *seedSuite) writeCatalog(c *gc.C) string {
	path := filepath.Join(c.MkDir(), "seed_data.json")
	err := os.WriteFile(path, []byte(catalogJSON), 0644)
	c.Assert(err, jc.ErrorIsNil)
	return path
}

func (s *seedSuite) newConn() *fakeSeedConn {
	stub := &testing.Stub{}
	return &fakeSeedConn{Stub: stub, tx: &fakeTx{Stub: stub}}
}

func (s *seedSuite) TestReadCatalog(c *gc.C) {
	items, err := database.ReadCatalog(s.writeCatalog(c))
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(items, gc.HasLen, 2)
	c.Assert(items[0], jc.DeepEquals, database.CatalogItem{
		ID:          1,
		Type:        "Footwear",
		Brand:       "Daybird",
		Name:        "Wanderer Black Hiking Boots",
		Description: "Daybird's Wanderer Hiking Boots in sleek black.",
		Price:       109.99,
		Embedding:   []float32{0.1, 0.2, 0.3},
	})
}

func (s *seedSuite) TestReadCatalogMissingFile(c *gc.C) {
	_, err := database.ReadCatalog(filepath.Join(c.MkDir(), "nope.json"))
	c.Assert(err, gc.ErrorMatches, "reading seed catalog: .*")
}

func (s *seedSuite) TestReadCatalogBadJSON(c *gc.C) {
	path := filepath.Join(c.MkDir(), "seed_data.json")
	err := os.WriteFile(path, []byte("{not json"), 0644)
	c.Assert(err, jc.ErrorIsNil)
	_, err = database.ReadCatalog(path)
	c.Assert(err, gc.ErrorMatches, "parsing seed catalog: .*")
}

func (s *seedSuite) TestSeedCountsInserts(c *gc.C) {
	items, err := database.ReadCatalog(s.writeCatalog(c))
	c.Assert(err, jc.ErrorIsNil)

	// The second item already exists, so its insert is a no-op.
	conn := s.newConn()
	conn.tx.tags = []string{"INSERT 0 1", "INSERT 0 0"}
	inserted, err := database.Seed(context.Background(), conn, items)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(inserted, gc.Equals, 1)
	conn.CheckCallNames(c, "Begin", "Exec", "Exec", "Commit")
	c.Assert(conn.tx.committed, jc.IsTrue)
	c.Assert(conn.tx.rolledBack, jc.IsFalse)

	args := conn.Calls()[1].Args[1].([]any)
	c.Assert(args[0], gc.Equals, 1)
	c.Assert(args[3], gc.Equals, "Wanderer Black Hiking Boots")
}

func (s *seedSuite) TestSeedRollsBackOnError(c *gc.C) {
	items, err := database.ReadCatalog(s.writeCatalog(c))
	c.Assert(err, jc.ErrorIsNil)

	conn := s.newConn()
	conn.SetErrors(nil, nil, errors.New("boom")) // Begin, first Exec, second Exec.
	inserted, err := database.Seed(context.Background(), conn, items)
	c.Assert(err, gc.ErrorMatches, "inserting item 2: boom")
	c.Assert(inserted, gc.Equals, 0)
	conn.CheckCallNames(c, "Begin", "Exec", "Exec")
	c.Assert(conn.tx.committed, jc.IsFalse)
	c.Assert(conn.tx.rolledBack, jc.IsTrue)
}

func (s *seedSuite) TestSeedBeginError(c *gc.C) {
	conn := s.newConn()
	conn.SetErrors(errors.New("pool closed"))
	_, err := database.Seed(context.Background(), conn, []database.CatalogItem{{ID: 1}})
	c.Assert(err, gc.ErrorMatches, "beginning seed transaction: pool closed")
	conn.CheckCallNames(c, "Begin")
}

func (s *seedSuite) TestSeedCommitError(c *gc.C) {
	conn := s.newConn()
	conn.SetErrors(nil, nil, errors.New("broken pipe")) // Begin, Exec, Commit.
	_, err := database.Seed(context.Background(), conn, []database.CatalogItem{{ID: 1}})
	c.Assert(err, gc.ErrorMatches, "committing seed transaction: broken pipe")
	c.Assert(conn.tx.committed, jc.IsFalse)
	c.Assert(conn.tx.rolledBack, jc.IsTrue)
}
