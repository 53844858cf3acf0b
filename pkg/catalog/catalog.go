// Package catalog stores generated gear pairs in a SQLite database.
//
// A record keeps the pair's input values as key/value attributes, the
// same map stamped on the assembly component, so a stored pair rebuilds
// to identical dimensions. The construction plan is kept alongside as
// JSON.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/bevel/internal/monitoring"
	"github.com/chazu/bevel/pkg/gear"
	"github.com/chazu/bevel/pkg/plan"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("catalog: record not found")

// Record is one stored gear pair.
type Record struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Spec        gear.PairSpec `json:"spec"`
	PlanID      string        `json:"plan_id,omitempty"`
	StepCount   int           `json:"step_count"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Catalog is a handle on a catalog database.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the database at path and migrates it to the
// current schema.
func Open(path string) (*Catalog, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	c := &Catalog{db: db}
	if err := c.migrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: %w", err)
	}
	monitoring.Debugf("catalog: opened %s", path)
	return c, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Save stores a pair and, when p is not nil, its construction plan. An
// empty name defaults to the assembly name.
func (c *Catalog) Save(ctx context.Context, name string, spec gear.PairSpec, p *plan.Plan) (*Record, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		name = spec.AssemblyName()
	}
	rec := &Record{
		ID:          uuid.NewString(),
		Name:        name,
		Description: spec.Description(),
		Spec:        spec,
		CreatedAt:   time.Now().UTC(),
	}
	var planJSON []byte
	if p != nil {
		var err error
		if planJSON, err = p.JSON(); err != nil {
			return nil, fmt.Errorf("catalog: encode plan: %w", err)
		}
		rec.PlanID = p.ID
		rec.StepCount = p.Len()
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pairs (pair_id, name, description, created_at, plan_id, step_count, plan_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Description, rec.CreatedAt.Format(timeLayout),
		rec.PlanID, rec.StepCount, string(planJSON))
	if err != nil {
		return nil, fmt.Errorf("catalog: insert pair: %w", err)
	}
	for k, v := range spec.Attributes() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pair_attributes (pair_id, key, value) VALUES (?, ?, ?)`, rec.ID, k, v); err != nil {
			return nil, fmt.Errorf("catalog: insert attribute %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("catalog: commit: %w", err)
	}
	monitoring.Logf("catalog: saved %q as %s", rec.Name, rec.ID)
	return rec, nil
}

// Get returns the record with the given ID.
func (c *Catalog) Get(ctx context.Context, id string) (*Record, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT pair_id, name, description, created_at, plan_id, step_count
		FROM pairs WHERE pair_id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", id, err)
	}
	if err := c.loadSpec(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns every record, oldest first.
func (c *Catalog) List(ctx context.Context) ([]*Record, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT pair_id, name, description, created_at, plan_id, step_count
		FROM pairs ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: list: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	rows.Close()

	for _, rec := range recs {
		if err := c.loadSpec(ctx, rec); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// Plan returns the stored plan JSON of a record. It is empty when the
// pair was saved without a plan.
func (c *Catalog) Plan(ctx context.Context, id string) ([]byte, error) {
	var s string
	err := c.db.QueryRowContext(ctx, `SELECT plan_json FROM pairs WHERE pair_id = ?`, id).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: plan %s: %w", id, err)
	}
	return []byte(s), nil
}

// Delete removes a record and its attributes.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pair_attributes WHERE pair_id = ?`, id); err != nil {
		return fmt.Errorf("catalog: delete attributes: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM pairs WHERE pair_id = ?`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var created string
	if err := s.Scan(&rec.ID, &rec.Name, &rec.Description, &created, &rec.PlanID, &rec.StepCount); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("created_at %q: %w", created, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}

func (c *Catalog) loadSpec(ctx context.Context, rec *Record) error {
	rows, err := c.db.QueryContext(ctx, `SELECT key, value FROM pair_attributes WHERE pair_id = ?`, rec.ID)
	if err != nil {
		return fmt.Errorf("catalog: attributes of %s: %w", rec.ID, err)
	}
	defer rows.Close()

	attrs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("catalog: attributes of %s: %w", rec.ID, err)
		}
		attrs[k] = v
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("catalog: attributes of %s: %w", rec.ID, err)
	}
	spec, err := gear.AttributesToPairSpec(attrs)
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", rec.ID, err)
	}
	rec.Spec = spec
	return nil
}
