package crud

import (
	"context"

	"architect/internal/apperr"
	"architect/internal/casing"
	"architect/internal/pgexec"
	"architect/internal/resolve"
	"architect/internal/sqlbuilder"
)

const bulkLimit = 100

// Service executes builder output against an executor and shapes JSON
// rows. Exec and SchemaOverride come from the request's tenant context —
// a fresh value is built per request.
type Service struct {
	Exec           pgexec.Executor
	SchemaOverride string
}

// List runs select_list and attaches any requested includes, returning
// rows with camelCase keys. rawParams are the query-string params
// (camelCase): limit/offset/include are read from it, and every other key
// becomes an equality predicate.
func (s *Service) List(ctx context.Context, m *resolve.ResolvedModel, e *resolve.ResolvedEntity, rawParams map[string]string) ([]map[string]any, error) {
	rows, err := s.listRaw(ctx, e, rawParams)
	if err != nil {
		return nil, err
	}
	includes, err := parseIncludeNames(rawParams["include"])
	if err != nil {
		return nil, err
	}
	if len(includes) > 0 {
		if err := s.ExpandIncludes(ctx, m, e, rows, includes); err != nil {
			return nil, err
		}
	}
	return deepCamelRows(rows), nil
}

func (s *Service) listRaw(ctx context.Context, e *resolve.ResolvedEntity, rawParams map[string]string) ([]map[string]any, error) {
	snakeParams := make(map[string]string, len(rawParams))
	for k, v := range rawParams {
		if k == "limit" || k == "offset" || k == "include" {
			snakeParams[k] = v
			continue
		}
		snakeParams[casing.ToSnake(k)] = v
	}

	filters := sqlbuilder.ParseFilters(snakeParams)
	if err := sqlbuilder.ValidateFilterColumns(e, filters); err != nil {
		return nil, err
	}
	filters = sqlbuilder.ResolveFilterTypes(e, filters)
	limit, offset := sqlbuilder.ParsePagination(snakeParams)

	q := sqlbuilder.SelectList(e, s.SchemaOverride, filters, limit, offset)
	rows, err := pgexec.QueryRows(ctx, s.Exec, q.SQL, q.Params...)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	return rows, nil
}

// Read runs select_by_id and attaches any requested includes. Returns
// apperr.NotFound when no row matches.
func (s *Service) Read(ctx context.Context, m *resolve.ResolvedModel, e *resolve.ResolvedEntity, id any, includeParam string) (map[string]any, error) {
	q := sqlbuilder.SelectByID(e, s.SchemaOverride, id)
	row, err := pgexec.QueryRow(ctx, s.Exec, q.SQL, q.Params...)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	if row == nil {
		return nil, apperr.NotFound("row not found")
	}

	includes, err := parseIncludeNames(includeParam)
	if err != nil {
		return nil, err
	}
	if len(includes) > 0 {
		if err := s.ExpandIncludes(ctx, m, e, []map[string]any{row}, includes); err != nil {
			return nil, err
		}
	}
	return deepCamel(row), nil
}

// Create validates body against the entity's rules, then runs insert.
func (s *Service) Create(ctx context.Context, e *resolve.ResolvedEntity, body map[string]any) (map[string]any, error) {
	snake := casing.ObjectKeysToSnake(body)
	if err := ValidateBody(snake, e.Validation); err != nil {
		return nil, err
	}
	q := sqlbuilder.Insert(e, s.SchemaOverride, snake)
	row, err := pgexec.QueryRow(ctx, s.Exec, q.SQL, q.Params...)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	if row == nil {
		return nil, apperr.Internal("insert returned no row")
	}
	return casing.ObjectKeysToCamel(row), nil
}

// Update validates the present fields, then runs update (or its
// fallback plain select when body carries no settable column).
func (s *Service) Update(ctx context.Context, e *resolve.ResolvedEntity, id any, body map[string]any) (map[string]any, error) {
	snake := casing.ObjectKeysToSnake(body)
	if err := ValidatePartial(snake, e.Validation); err != nil {
		return nil, err
	}
	q := sqlbuilder.Update(e, s.SchemaOverride, id, snake)
	row, err := pgexec.QueryRow(ctx, s.Exec, q.SQL, q.Params...)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	if row == nil {
		return nil, apperr.NotFound("row not found")
	}
	return casing.ObjectKeysToCamel(row), nil
}

// Delete runs delete, using the command tag's affected-row count to
// detect a missing row (the builder's delete shape carries no RETURNING).
func (s *Service) Delete(ctx context.Context, e *resolve.ResolvedEntity, id any) error {
	q := sqlbuilder.Delete(e, s.SchemaOverride, id)
	tag, err := s.Exec.Exec(ctx, q.SQL, q.Params...)
	if err != nil {
		return pgexec.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("row not found")
	}
	return nil
}

// BulkCreate inserts every item in a single transaction, capped at
// bulkLimit; partial success is never observable.
func (s *Service) BulkCreate(ctx context.Context, e *resolve.ResolvedEntity, items []map[string]any) ([]map[string]any, error) {
	if len(items) > bulkLimit {
		return nil, apperr.BadRequest("bulk create limited to 100 items")
	}
	beginner, ok := s.Exec.(pgexec.Beginner)
	if !ok {
		return nil, apperr.Internal("executor does not support transactions")
	}
	tx, err := beginner.Begin(ctx)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	defer tx.Rollback(ctx)

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		snake := casing.ObjectKeysToSnake(item)
		if err := ValidateBody(snake, e.Validation); err != nil {
			return nil, err
		}
		q := sqlbuilder.Insert(e, s.SchemaOverride, snake)
		row, err := pgexec.QueryRow(ctx, tx, q.SQL, q.Params...)
		if err != nil {
			return nil, pgexec.Classify(err)
		}
		if row == nil {
			return nil, apperr.Internal("insert returned no row")
		}
		out = append(out, casing.ObjectKeysToCamel(row))
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, pgexec.Classify(err)
	}
	return out, nil
}

// BulkUpdate updates every item (each must carry its primary key) in a
// single transaction, capped at bulkLimit.
func (s *Service) BulkUpdate(ctx context.Context, e *resolve.ResolvedEntity, items []map[string]any) ([]map[string]any, error) {
	if len(items) > bulkLimit {
		return nil, apperr.BadRequest("bulk update limited to 100 items")
	}
	beginner, ok := s.Exec.(pgexec.Beginner)
	if !ok {
		return nil, apperr.Internal("executor does not support transactions")
	}
	tx, err := beginner.Begin(ctx)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	defer tx.Rollback(ctx)

	pk := e.PKColumns[0]
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		snake := casing.ObjectKeysToSnake(item)
		id, ok := snake[pk]
		if !ok {
			return nil, apperr.Validation("each item must have '" + pk + "'")
		}
		delete(snake, pk)
		if err := ValidatePartial(snake, e.Validation); err != nil {
			return nil, err
		}
		q := sqlbuilder.Update(e, s.SchemaOverride, id, snake)
		row, err := pgexec.QueryRow(ctx, tx, q.SQL, q.Params...)
		if err != nil {
			return nil, pgexec.Classify(err)
		}
		if row != nil {
			out = append(out, casing.ObjectKeysToCamel(row))
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, pgexec.Classify(err)
	}
	return out, nil
}

