package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/tabrl/transition"
	"github.com/domino14/tabrl/value"
)

const schema = `
CREATE TABLE IF NOT EXISTS state_values (
	state TEXT PRIMARY KEY,
	estimate REAL NOT NULL,
	visit_count REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS transitions (
	state_action TEXT NOT NULL,
	successor TEXT NOT NULL,
	count REAL NOT NULL,
	PRIMARY KEY (state_action, successor)
);`

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// SaveSQLite replaces the contents of the database at path with the tables.
// Writes are retried while another process holds the database lock.
func SaveSQLite(ctx context.Context, path string, vals *value.Table, trans *transition.Table) error {
	doc, err := NewDocument(vals, trans)
	if err != nil {
		return err
	}
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	err = retry.Do(
		func() error { return writeDocument(ctx, db, doc) },
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(50*time.Millisecond),
		retry.RetryIf(isBusy),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n).Str("path", path).Msg("sqlite-busy-retrying")
		}),
	)
	if err != nil {
		return err
	}
	log.Info().Str("path", path).Int("states", len(doc.StateValues)).
		Int("transitions", len(doc.Transitions)).Msg("saved-tables")
	return nil
}

func writeDocument(ctx context.Context, db *sql.DB, doc *Document) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return err
	}
	for _, q := range []string{"DELETE FROM state_values", "DELETE FROM transitions"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	insVal, err := tx.PrepareContext(ctx,
		"INSERT INTO state_values (state, estimate, visit_count) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer insVal.Close()
	for _, sv := range doc.StateValues {
		key, err := json.Marshal(sv.State)
		if err != nil {
			return err
		}
		if _, err := insVal.ExecContext(ctx, string(key), sv.Value.Estimate, sv.Value.VisitCount); err != nil {
			return err
		}
	}
	insTr, err := tx.PrepareContext(ctx,
		"INSERT INTO transitions (state_action, successor, count) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer insTr.Close()
	for _, pc := range doc.Transitions {
		sa, err := json.Marshal(pc.StateAction)
		if err != nil {
			return err
		}
		for _, succ := range pc.Successors {
			next, err := json.Marshal(succ.State)
			if err != nil {
				return err
			}
			if _, err := insTr.ExecContext(ctx, string(sa), string(next), succ.Count); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// LoadSQLite reads tables written by SaveSQLite.
func LoadSQLite(ctx context.Context, path string) (*value.Table, *transition.Table, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	doc := &Document{}
	rows, err := db.QueryContext(ctx,
		"SELECT state, estimate, visit_count FROM state_values ORDER BY rowid")
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		var key string
		sv := StateValue{}
		if err := rows.Scan(&key, &sv.Value.Estimate, &sv.Value.VisitCount); err != nil {
			rows.Close()
			return nil, nil, err
		}
		if err := json.Unmarshal([]byte(key), &sv.State); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("%w: state %q: %w", ErrMalformed, key, err)
		}
		doc.StateValues = append(doc.StateValues, sv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	rows, err = db.QueryContext(ctx,
		"SELECT state_action, successor, count FROM transitions ORDER BY rowid")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	idx := map[string]int{}
	for rows.Next() {
		var sa, next string
		var count float64
		if err := rows.Scan(&sa, &next, &count); err != nil {
			return nil, nil, err
		}
		i, ok := idx[sa]
		if !ok {
			pc := PairCounts{}
			if err := json.Unmarshal([]byte(sa), &pc.StateAction); err != nil {
				return nil, nil, fmt.Errorf("%w: state-action %q: %w", ErrMalformed, sa, err)
			}
			i = len(doc.Transitions)
			idx[sa] = i
			doc.Transitions = append(doc.Transitions, pc)
		}
		succ := SuccessorCount{Count: count}
		if err := json.Unmarshal([]byte(next), &succ.State); err != nil {
			return nil, nil, fmt.Errorf("%w: successor %q: %w", ErrMalformed, next, err)
		}
		doc.Transitions[i].Successors = append(doc.Transitions[i].Successors, succ)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return doc.Tables()
}
