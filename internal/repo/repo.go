package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bitrix_activity/internal/bitrix"
	"bitrix_activity/internal/dict"
	"bitrix_activity/internal/titles"
)

// Repository owns the two tables behind the webhook pipeline: the
// deal_activity mirror and the companies tag cache. The dictionary is
// injected once at construction; list-field option ids are translated at
// write time.
type Repository struct {
	pool  *pgxpool.Pool
	dicts *dict.Dictionary
}

func New(pool *pgxpool.Pool, dicts *dict.Dictionary) *Repository {
	return &Repository{pool: pool, dicts: dicts}
}

func (r *Repository) Migrate(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS deal_activity (
  deal_id           bigint PRIMARY KEY,
  title             text,
  stage_id          text,
  opportunity       double precision,
  assigned_by_id    bigint,
  created_by_id     bigint,
  source_id         text,
  company_id        bigint,
  contact_id        bigint,
  date_create       timestamptz,
  date_modify       timestamptz,
  closed            boolean,
  priority          boolean,
  delivery_deadline text,
  return_type       text,
  demand_type       text,
  executor_code     text,
  executor          text,
  revision_reason   text,
  completion_notes  text,
  decline_reason    text,
  updated_at        timestamptz DEFAULT now()
);

CREATE INDEX IF NOT EXISTS deal_activity_company_idx ON deal_activity(company_id);

CREATE TABLE IF NOT EXISTS companies (
  bitrix_company_id bigint PRIMARY KEY,
  company_name      text,
  tag_prefix        text NOT NULL,
  deal_seq          bigint NOT NULL DEFAULT 0,
  created_at        timestamptz NOT NULL DEFAULT now()
);
`
	_, err := r.pool.Exec(ctx, ddl)
	return err
}

// Ping verifies database reachability; used once at boot.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// UpsertDealActivity replaces the whole row for the deal. Bitrix is the
// source of truth; there are no field-level patches.
func (r *Repository) UpsertDealActivity(ctx context.Context, d bitrix.Deal) error {
	dealID, err := strconv.ParseInt(d.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("deal id %q is not numeric: %w", d.ID, err)
	}

	sql := `
INSERT INTO deal_activity (
  deal_id, title, stage_id, opportunity, assigned_by_id,
  created_by_id, source_id, company_id, contact_id, date_create,
  date_modify, closed,
  priority, delivery_deadline, return_type, demand_type, executor_code,
  executor, revision_reason, completion_notes, decline_reason,
  updated_at
) VALUES (
  $1,$2,$3,$4,$5,
  $6,$7,$8,$9,$10,
  $11,$12,
  $13,$14,$15,$16,$17,
  $18,$19,$20,$21,
  now()
)
ON CONFLICT (deal_id) DO UPDATE SET
  title = EXCLUDED.title,
  stage_id = EXCLUDED.stage_id,
  opportunity = EXCLUDED.opportunity,
  assigned_by_id = EXCLUDED.assigned_by_id,
  created_by_id = EXCLUDED.created_by_id,
  source_id = EXCLUDED.source_id,
  company_id = EXCLUDED.company_id,
  contact_id = EXCLUDED.contact_id,
  date_create = EXCLUDED.date_create,
  date_modify = EXCLUDED.date_modify,
  closed = EXCLUDED.closed,
  priority = EXCLUDED.priority,
  delivery_deadline = EXCLUDED.delivery_deadline,
  return_type = EXCLUDED.return_type,
  demand_type = EXCLUDED.demand_type,
  executor_code = EXCLUDED.executor_code,
  executor = EXCLUDED.executor,
  revision_reason = EXCLUDED.revision_reason,
  completion_notes = EXCLUDED.completion_notes,
  decline_reason = EXCLUDED.decline_reason,
  updated_at = now();
`

	dc, _ := parseRFC3339(d.DateCreate)
	dm, _ := parseRFC3339(d.DateModify)

	_, err = r.pool.Exec(ctx, sql,
		dealID,
		emptyToNull(d.Title),
		emptyToNull(d.StageID),
		floatOrNull(d.Opportunity),
		intOrNull(d.AssignedByID),
		intOrNull(d.CreatedByID),
		emptyToNull(d.SourceID),
		intOrNull(d.CompanyID),
		intOrNull(d.ContactID),
		nullTime(dc),
		nullTime(dm),
		d.Closed == "Y",
		d.Priority == titles.PriorityYes,
		emptyToNull(d.Deadline),
		r.translateOrNull(dict.GroupReturnType, d.ReturnType),
		r.translateOrNull(dict.GroupDemandType, d.DemandType),
		emptyToNull(d.ExecutorCode),
		emptyToNull(d.Executor),
		emptyToNull(d.RevisionReason),
		emptyToNull(d.CompletionNotes),
		emptyToNull(d.DeclineReason),
	)
	if err != nil {
		return fmt.Errorf("upsert deal %d: %w", dealID, err)
	}
	return nil
}

// DeleteDealActivity removes the mirror row; zero affected rows is a valid
// outcome the caller may want to log.
func (r *Repository) DeleteDealActivity(ctx context.Context, dealID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM deal_activity WHERE deal_id = $1`, dealID)
	if err != nil {
		return 0, fmt.Errorf("delete deal %d: %w", dealID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) DeleteCompany(ctx context.Context, companyID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE bitrix_company_id = $1`, companyID)
	if err != nil {
		return 0, fmt.Errorf("delete company %d: %w", companyID, err)
	}
	return tag.RowsAffected(), nil
}

// CompanyTag returns the cached tag prefix, or "" when the company is not
// cached yet.
func (r *Repository) CompanyTag(ctx context.Context, companyID int64) (string, error) {
	var tag string
	err := r.pool.QueryRow(ctx,
		`SELECT tag_prefix FROM companies WHERE bitrix_company_id = $1`, companyID).Scan(&tag)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("company tag %d: %w", companyID, err)
	}
	return tag, nil
}

// SaveCompany caches the company tag. The sequence is seeded with the
// number of activity rows already mirrored for the company, so numbering
// continues from what exists rather than restarting at 1. Concurrent
// deliveries may race here; the primary key settles the race and the
// insert that loses is dropped.
func (r *Repository) SaveCompany(ctx context.Context, companyID int64, name, tag string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO companies (bitrix_company_id, company_name, tag_prefix, deal_seq)
VALUES ($1, $2, $3, (SELECT count(*) FROM deal_activity WHERE company_id = $1))
ON CONFLICT (bitrix_company_id) DO NOTHING
`, companyID, name, tag)
	if err != nil {
		return fmt.Errorf("save company %d: %w", companyID, err)
	}
	return nil
}

// NextDealSequence atomically increments and returns the per-company deal
// counter. A single statement, so concurrent deliveries cannot observe the
// same value.
func (r *Repository) NextDealSequence(ctx context.Context, companyID int64) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `
UPDATE companies SET deal_seq = deal_seq + 1
WHERE bitrix_company_id = $1
RETURNING deal_seq
`, companyID).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("next deal sequence: company %d is not cached", companyID)
		}
		return 0, fmt.Errorf("next deal sequence %d: %w", companyID, err)
	}
	return seq, nil
}

func (r *Repository) translateOrNull(group dict.Group, optionID string) any {
	if label, ok := r.dicts.Translate(group, optionID); ok {
		return label
	}
	return nil
}

func parseRFC3339(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	return time.Parse(time.RFC3339, s)
}

func intOrNull(s string) any {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n == 0 {
		return nil
	}
	return n
}

func floatOrNull(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f == 0 {
		return nil
	}
	return f
}

func emptyToNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
