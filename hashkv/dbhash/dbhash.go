// Package dbhash is the persistent implementation of hashkv.Hash
// (spec.md §4.E "Disk variant"): "a single file ... providing the same
// semantics" as the memory variant. It is grounded in the teacher
// repo's internal/db package: gorm.io/gorm + gorm.io/driver/sqlite +
// github.com/mattn/go-sqlite3 back a single table per Hash instance,
// and writes retry on SQLITE_BUSY the way internal/db/db.go's
// execWithRetry does.
package dbhash

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oxhq/rdfcore/hashkv"
)

// pair is the one-table schema backing a Hash file: spec.md §6's
// "native format of the chosen Hash disk implementation" is, here, a
// single SQLite table with a unique (k, v) index so duplicate puts are
// silently merged, exactly like memhash's de-duplication.
type pair struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	K  []byte `gorm:"index:idx_kv,unique,priority:1;index:idx_k"`
	V  []byte `gorm:"index:idx_kv,unique,priority:2"`
	// Seq preserves per-key insertion order for Cursor walks.
	Seq uint64 `gorm:"index:idx_k_seq"`
}

func (pair) TableName() string { return "kv" }

// Hash is a single-file, B-tree-organized (SQLite) ordered multimap.
type Hash struct {
	db       *gorm.DB
	path     string
	writable bool
	nextSeq  uint64
}

// New returns an unopened Hash.
func New() *Hash { return &Hash{} }

func (h *Hash) Open(opts hashkv.OpenOptions) error {
	if opts.Identifier == "" {
		return fmt.Errorf("dbhash: empty identifier")
	}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return fmt.Errorf("dbhash: mkdir %q: %w", opts.Dir, err)
		}
	}
	path := filepath.Join(opts.Dir, opts.Identifier+".hdb")
	if opts.CreateNew {
		_ = os.Remove(path)
	}
	if !opts.Writable {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("dbhash: open read-only %q: %w", path, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return fmt.Errorf("dbhash: open %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("dbhash: underlying *sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1) // SQLite: one writer at a time, matches the teacher's retry-on-busy design

	if opts.Writable {
		if err := db.AutoMigrate(&pair{}); err != nil {
			return fmt.Errorf("dbhash: migrate %q: %w", path, err)
		}
	}

	h.db = db
	h.path = path
	h.writable = opts.Writable

	var maxSeq uint64
	_ = db.Model(&pair{}).Select("COALESCE(MAX(seq), 0)").Row().Scan(&maxSeq)
	h.nextSeq = maxSeq + 1
	return nil
}

func (h *Hash) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Sync forces buffered pages to durable storage, per spec.md §4.E.
func (h *Hash) Sync() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return h.withRetry(func() error {
		_, err := sqlDB.Exec("PRAGMA wal_checkpoint(FULL);")
		return err
	})
}

func (h *Hash) ValuesCount() (int64, error) {
	var n int64
	err := h.db.Model(&pair{}).Count(&n).Error
	return n, err
}

func (h *Hash) Put(key, value []byte) error {
	return h.withRetry(func() error {
		p := pair{K: key, V: value, Seq: h.nextSeq}
		res := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "k"}, {Name: "v"}},
			DoNothing: true,
		}).Create(&p)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			h.nextSeq++
		}
		return nil
	})
}

func (h *Hash) GetOne(key []byte) ([]byte, bool, error) {
	var p pair
	err := h.db.Where("k = ?", key).Order("seq asc").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p.V, true, nil
}

// GetAll answers spec.md §4.E's get_all(key) directly against the
// idx_k index rather than the Cursor's full-table walk.
func (h *Hash) GetAll(key []byte) ([][]byte, error) {
	var rows []pair
	if err := h.db.Where("k = ?", key).Order("seq asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([][]byte, len(rows))
	for i, p := range rows {
		out[i] = p.V
	}
	return out, nil
}

// Keys answers spec.md §4.E's keys() via a single DISTINCT query.
func (h *Hash) Keys() ([][]byte, error) {
	var out [][]byte
	tx := h.db.Model(&pair{}).Distinct().Order("k asc").Pluck("k", &out)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return out, nil
}

func (h *Hash) Contains(key, value []byte) (bool, error) {
	var n int64
	err := h.db.Model(&pair{}).Where("k = ? AND v = ?", key, value).Count(&n).Error
	return n > 0, err
}

func (h *Hash) ContainsKey(key []byte) (bool, error) {
	var n int64
	err := h.db.Model(&pair{}).Where("k = ?", key).Count(&n).Error
	return n > 0, err
}

func (h *Hash) DeleteKey(key []byte) error {
	return h.withRetry(func() error {
		return h.db.Where("k = ?", key).Delete(&pair{}).Error
	})
}

func (h *Hash) DeleteKeyValue(key, value []byte) error {
	return h.withRetry(func() error {
		return h.db.Where("k = ? AND v = ?", key, value).Delete(&pair{}).Error
	})
}

// Fd is exposed only so a caller can arrange external advisory locking,
// per spec.md §4.E; SQLite file locking already guards concurrent
// processes so rdfcore does not use it itself.
func (h *Hash) Fd() (int, bool) {
	f, err := os.Open(h.path)
	if err != nil {
		return -1, false
	}
	return int(f.Fd()), true
}

func (h *Hash) NewCursor() (hashkv.Cursor, error) {
	var rows []pair
	if err := h.db.Order("k asc, seq asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return &cursor{rows: rows, pos: -1}, nil
}

type cursor struct {
	rows []pair
	pos  int
}

func (c *cursor) Key() []byte {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos].K
}

func (c *cursor) Value() []byte {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos].V
}

func (c *cursor) Close() error { return nil }

func (c *cursor) Set(key, value []byte) bool {
	for i, p := range c.rows {
		if string(p.K) == string(key) && string(p.V) == string(value) {
			c.pos = i
			return true
		}
	}
	return false
}

func (c *cursor) NextValue() ([]byte, bool) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, false
	}
	cur := c.rows[c.pos]
	if c.pos+1 < len(c.rows) && string(c.rows[c.pos+1].K) == string(cur.K) {
		c.pos++
		return c.rows[c.pos].V, true
	}
	return nil, false
}

func (c *cursor) FirstKey() ([]byte, []byte, bool) {
	if len(c.rows) == 0 {
		return nil, nil, false
	}
	c.pos = 0
	return c.rows[0].K, c.rows[0].V, true
}

func (c *cursor) NextKey() ([]byte, []byte, bool) {
	if c.pos < 0 {
		return c.FirstKey()
	}
	cur := c.rows[c.pos].K
	for i := c.pos + 1; i < len(c.rows); i++ {
		if string(c.rows[i].K) != string(cur) {
			c.pos = i
			return c.rows[i].K, c.rows[i].V, true
		}
	}
	return nil, nil, false
}

// withRetry mirrors internal/db/db.go's
// execWithRetry/execWithRetryTx: SQLite's "database is locked" is
// transient under WAL and worth a few bounded retries instead of
// surfacing as BackendFailure immediately.
func (h *Hash) withRetry(fn func() error) error {
	const maxRetries = 5
	var err error
	for range maxRetries {
		err = fn()
		if err == nil || !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("dbhash: database is locked after %d retries: %w", maxRetries, err)
}

var _ hashkv.Hash = (*Hash)(nil)
