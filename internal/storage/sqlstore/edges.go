package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/google/uuid"

	apperrors "github.com/g30r93g/PRereq/internal/errors"
	"github.com/g30r93g/PRereq/internal/graph"
	"github.com/g30r93g/PRereq/internal/models"
)

// ReplaceEdges deletes the stored outbound edges of dependent and inserts
// dependencies in one transaction. On PostgreSQL writers for the same
// dependent are serialized with a transaction-scoped advisory lock.
func (s *Store) ReplaceEdges(ctx context.Context, dependent models.PRRef, dependencies []models.PRRef) error {
	wrap := func(err error) error {
		return apperrors.ErrStorageWrite.WithError(err).WithContext("ref", dependent.String())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback()

	if s.driver == DriverPostgres {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", dependent.String()); err != nil {
			return wrap(fmt.Errorf("lock dependent: %w", err))
		}
	}

	if _, err := tx.ExecContext(ctx, s.rebind(`
		DELETE FROM deps
		WHERE dependent_owner = ? AND dependent_repo = ? AND dependent_num = ?
	`), dependent.Owner, dependent.Repo, dependent.Number); err != nil {
		return wrap(fmt.Errorf("delete edges: %w", err))
	}

	insert := s.rebind(`
		INSERT INTO deps (id, dependent_owner, dependent_repo, dependent_num, dep_owner, dep_repo, dep_num)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	seen := make(map[models.PRRef]bool, len(dependencies))
	for _, dep := range dependencies {
		if seen[dep] {
			continue
		}
		seen[dep] = true

		if _, err := tx.ExecContext(ctx, insert,
			uuid.NewString(),
			dependent.Owner, dependent.Repo, dependent.Number,
			dep.Owner, dep.Repo, dep.Number,
		); err != nil {
			return wrap(fmt.Errorf("insert edge to %s: %w", dep, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (s *Store) OutboundOf(ctx context.Context, node models.PRRef) ([]models.PRRef, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT dep_owner, dep_repo, dep_num FROM deps
		WHERE dependent_owner = ? AND dependent_repo = ? AND dependent_num = ?
	`), node.Owner, node.Repo, node.Number)
	if err != nil {
		return nil, readError(node, err)
	}
	return scanRefs(node, rows)
}

func (s *Store) InboundOf(ctx context.Context, node models.PRRef) ([]models.PRRef, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT dependent_owner, dependent_repo, dependent_num FROM deps
		WHERE dep_owner = ? AND dep_repo = ? AND dep_num = ?
	`), node.Owner, node.Repo, node.Number)
	if err != nil {
		return nil, readError(node, err)
	}
	return scanRefs(node, rows)
}

func (s *Store) ListEdges(ctx context.Context) ([]models.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dependent_owner, dependent_repo, dependent_num, dep_owner, dep_repo, dep_num
		FROM deps
	`)
	if err != nil {
		return nil, apperrors.ErrStorageRead.WithError(err)
	}
	defer rows.Close()

	var edges []models.Edge
	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(
			&e.Dependent.Owner, &e.Dependent.Repo, &e.Dependent.Number,
			&e.Dependency.Owner, &e.Dependency.Repo, &e.Dependency.Number,
		); err != nil {
			return nil, apperrors.ErrStorageRead.WithError(err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.ErrStorageRead.WithError(err)
	}

	graph.SortEdges(edges)
	return edges, nil
}

// Collation differs between SQLite and PostgreSQL, so ordering happens here.
func scanRefs(node models.PRRef, rows *sql.Rows) ([]models.PRRef, error) {
	defer rows.Close()

	refs := []models.PRRef{}
	for rows.Next() {
		var r models.PRRef
		if err := rows.Scan(&r.Owner, &r.Repo, &r.Number); err != nil {
			return nil, readError(node, err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(node, err)
	}

	slices.SortFunc(refs, models.ComparePRRef)
	return refs, nil
}

func readError(node models.PRRef, err error) error {
	return apperrors.ErrStorageRead.WithError(err).WithContext("ref", node.String())
}
