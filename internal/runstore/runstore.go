// Package runstore persists one row per mdp run and per stage execution
// into a local (or optional remote Turso) SQLite database, adapted from
// the teacher's db/sqlite.go Connect/Migrate pattern so that `mdp history`
// can query across many runs instead of reading one run-artifacts
// directory at a time.
package runstore

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	puresqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mdproof/mdp/internal/runmodel"
)

// Store wraps a gorm connection scoped to the run-history schema.
type Store struct {
	db *gorm.DB
}

// Connect opens dsn (a local file path, or a libsql/http(s) URL for a
// remote Turso database when MDP_LIBSQL_AUTH_TOKEN is set) and migrates
// the run-history schema.
func Connect(dsn string, debug bool) (*Store, error) {
	if !isURL(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating run-history directory: %w", err)
			}
		}
	}

	gcfg := &gorm.Config{}
	if debug {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		if token := os.Getenv("MDP_LIBSQL_AUTH_TOKEN"); token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("creating libsql connector: %w", err)
		}
		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		})
	} else {
		// Pure-Go, cgo-free driver for the common local-file case so mdp
		// ships as a single static binary.
		dialector = puresqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("connecting to run-history store: %w", err)
	}

	if err := db.AutoMigrate(&runmodel.RunRecord{}, &runmodel.StageRecord{}); err != nil {
		return nil, fmt.Errorf("migrating run-history schema: %w", err)
	}

	return &Store{db: db}, nil
}

func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "libsql")
}

// RunInput is the subset of pipeline output needed to persist one run.
type RunInput struct {
	ID              string
	Document        string
	StartedAt       time.Time
	Duration        time.Duration
	ExitCode        int
	OriginalSHA1    string
	ResultSHA1      string
	OriginalLen     int
	ResultLen       int
	PostCheckOK     bool
	PostCheckErrors []string
	Rejections      map[string]int
	Stages          []StageInput
}

// StageInput is one stage's contribution to a run, as recorded by
// internal/pipeline.
type StageInput struct {
	Name        string
	Skipped     bool
	Duration    time.Duration
	InputChars  int
	OutputChars int
	Counts      map[string]int
}

// SaveRun persists a completed run and its stage records in one transaction.
func (s *Store) SaveRun(in RunInput) error {
	postCheckErrors, err := json.Marshal(in.PostCheckErrors)
	if err != nil {
		return fmt.Errorf("marshaling post-check errors: %w", err)
	}
	rejections, err := json.Marshal(in.Rejections)
	if err != nil {
		return fmt.Errorf("marshaling rejections: %w", err)
	}

	record := runmodel.RunRecord{
		ID:              in.ID,
		Document:        in.Document,
		StartedAt:       in.StartedAt,
		DurationMs:      in.Duration.Milliseconds(),
		ExitCode:        in.ExitCode,
		OriginalSHA1:    in.OriginalSHA1,
		ResultSHA1:      in.ResultSHA1,
		OriginalLen:     in.OriginalLen,
		ResultLen:       in.ResultLen,
		PostCheckOK:     in.PostCheckOK,
		PostCheckErrors: postCheckErrors,
		Rejections:      rejections,
	}

	for i, st := range in.Stages {
		counts, err := json.Marshal(st.Counts)
		if err != nil {
			return fmt.Errorf("marshaling stage counts: %w", err)
		}
		record.Stages = append(record.Stages, runmodel.StageRecord{
			ID:          fmt.Sprintf("%s-%d", in.ID, i),
			RunID:       in.ID,
			Name:        st.Name,
			Skipped:     st.Skipped,
			DurationMs:  st.Duration.Milliseconds(),
			InputChars:  st.InputChars,
			OutputChars: st.OutputChars,
			Counts:      counts,
		})
	}

	return s.db.Create(&record).Error
}

// ListRuns returns the most recent limit runs (or all, if limit <= 0),
// newest first.
func (s *Store) ListRuns(limit int) ([]runmodel.RunRecord, error) {
	var runs []runmodel.RunRecord
	q := s.db.Order("started_at desc").Preload("Stages")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
