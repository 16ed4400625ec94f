package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	Query          string
	QueryEmbedding []float32
	Category       string
	Kind           string
	Account        string
	MinScore       float64
	Since          time.Time
	Limit          int
	Offset         int
}

type ListResult struct {
	Records []*models.OpportunityRecord `json:"records"`
	Total   int                         `json:"total"`
	Limit   int                         `json:"limit"`
	Offset  int                         `json:"offset"`
}

// Stats is the aggregate view exposed by the summary command and the
// stats endpoint.
type Stats struct {
	Total           int            `json:"total"`
	HighPriority    int            `json:"high_priority"`
	Exploratory     int            `json:"exploratory"`
	ByKind          map[string]int `json:"by_kind"`
	ProcessedEmails int            `json:"processed_emails"`
	LastProcessedAt *time.Time     `json:"last_processed_at,omitempty"`
}

const selectCols = `id, title, organization, kind, eligibility, location, deadline, notes,
	source_date, processed_at, priority_score, category,
	urls, primary_url, links, contacts, pdf_deadlines, account`

func scanRecord(scan func(dest ...interface{}) error) (*models.OpportunityRecord, error) {
	var r models.OpportunityRecord
	var kind, category string
	var sourceDate *time.Time
	var linksRaw, contactsRaw []byte

	err := scan(
		&r.ID, &r.Title, &r.Organization, &kind, &r.Eligibility, &r.Location, &r.Deadline, &r.Notes,
		&sourceDate, &r.ProcessedAt, &r.PriorityScore, &category,
		&r.URLs, &r.PrimaryURL, &linksRaw, &contactsRaw, &r.PDFDeadlines, &r.Account,
	)
	if err != nil {
		return nil, err
	}

	r.Kind = models.Kind(kind)
	r.Category = models.Category(category)
	if sourceDate != nil {
		r.SourceDate = *sourceDate
	}
	if len(linksRaw) > 0 {
		_ = json.Unmarshal(linksRaw, &r.Links)
	}
	if len(contactsRaw) > 0 {
		_ = json.Unmarshal(contactsRaw, &r.Contacts)
	}

	return &r, nil
}

// SaveRecord upserts one record together with its embedding. A nil
// embedding stores NULL, which excludes the row from semantic search.
func (s *Store) SaveRecord(ctx context.Context, rec *models.OpportunityRecord, embedding []float32) error {
	linksJSON, err := json.Marshal(rec.Links)
	if err != nil {
		return fmt.Errorf("failed to encode links: %w", err)
	}
	contactsJSON, err := json.Marshal(rec.Contacts)
	if err != nil {
		return fmt.Errorf("failed to encode contacts: %w", err)
	}

	var vec interface{}
	if len(embedding) > 0 {
		vec = pgvector.NewVector(embedding)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO opportunities (
			id, title, organization, kind, eligibility, location, deadline, notes,
			source_date, processed_at, priority_score, category,
			urls, primary_url, links, contacts, pdf_deadlines, account, embedding
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			organization = EXCLUDED.organization,
			kind = EXCLUDED.kind,
			eligibility = EXCLUDED.eligibility,
			location = EXCLUDED.location,
			deadline = EXCLUDED.deadline,
			notes = EXCLUDED.notes,
			priority_score = EXCLUDED.priority_score,
			category = EXCLUDED.category,
			urls = EXCLUDED.urls,
			primary_url = EXCLUDED.primary_url,
			links = EXCLUDED.links,
			contacts = EXCLUDED.contacts,
			pdf_deadlines = EXCLUDED.pdf_deadlines,
			embedding = COALESCE(EXCLUDED.embedding, opportunities.embedding)
	`,
		rec.ID, rec.Title, rec.Organization, string(rec.Kind), rec.Eligibility,
		rec.Location, rec.Deadline, rec.Notes,
		nilIfZeroTime(rec.SourceDate), rec.ProcessedAt, rec.PriorityScore, string(rec.Category),
		rec.URLs, rec.PrimaryURL, linksJSON, contactsJSON, rec.PDFDeadlines, rec.Account, vec,
	)
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (*models.OpportunityRecord, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+selectCols+" FROM opportunities WHERE id = $1", id)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", id, err)
	}
	return rec, nil
}

// ListRecords filters and pages stored records. When a query embedding
// is present, results are ordered by cosine similarity; otherwise by
// processing recency then score.
func (s *Store) ListRecords(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Limit <= 0 || params.Limit > 200 {
		params.Limit = 50
	}

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if params.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, params.Category)
		argIdx++
	}
	if params.Kind != "" {
		where += fmt.Sprintf(" AND kind = $%d", argIdx)
		args = append(args, params.Kind)
		argIdx++
	}
	if params.Account != "" {
		where += fmt.Sprintf(" AND account = $%d", argIdx)
		args = append(args, params.Account)
		argIdx++
	}
	if params.MinScore > 0 {
		where += fmt.Sprintf(" AND priority_score >= $%d", argIdx)
		args = append(args, params.MinScore)
		argIdx++
	}
	if !params.Since.IsZero() {
		where += fmt.Sprintf(" AND processed_at >= $%d", argIdx)
		args = append(args, params.Since)
		argIdx++
	}
	if params.Query != "" {
		where += fmt.Sprintf(" AND (title ILIKE $%d OR organization ILIKE $%d OR notes ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+params.Query+"%")
		argIdx++
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM opportunities %s", selectCols, where)
	if len(params.QueryEmbedding) > 0 {
		selectSQL += fmt.Sprintf(`
			ORDER BY
				CASE WHEN embedding IS NULL THEN 1 ELSE 0 END ASC,
				COALESCE(1 - (embedding <=> $%d), -1) DESC,
				processed_at DESC
		`, argIdx)
		args = append(args, pgvector.NewVector(params.QueryEmbedding))
		argIdx++
	} else {
		selectSQL += " ORDER BY processed_at DESC, priority_score DESC, id ASC"
	}

	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records := []*models.OpportunityRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return &ListResult{
		Records: records,
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
	}, nil
}

// RecordsSince returns every categorized record processed at or after
// the cutoff, ordered for digest rendering.
func (s *Store) RecordsSince(ctx context.Context, cutoff time.Time) ([]*models.OpportunityRecord, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+selectCols+" FROM opportunities WHERE processed_at >= $1 AND category <> '' ORDER BY priority_score DESC, id ASC",
		cutoff)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []*models.OpportunityRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) IsEmailProcessed(ctx context.Context, uid string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM processed_emails WHERE uid = $1)", uid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check processed email %s: %w", uid, err)
	}
	return exists, nil
}

func (s *Store) MarkEmailProcessed(ctx context.Context, uid, account, subject string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO processed_emails (uid, account, subject)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO NOTHING
	`, uid, account, subject)
	if err != nil {
		return fmt.Errorf("failed to mark email %s processed: %w", uid, err)
	}
	return nil
}

func (s *Store) LogDigest(ctx context.Context, recipient string, highPriority, exploratory int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO digest_log (recipient, high_priority_count, exploratory_count)
		VALUES ($1, $2, $3)
	`, recipient, highPriority, exploratory)
	if err != nil {
		return fmt.Errorf("failed to log digest: %w", err)
	}
	return nil
}

func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByKind: map[string]int{}}

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE category = 'high_priority'),
			COUNT(*) FILTER (WHERE category = 'exploratory'),
			MAX(processed_at)
		FROM opportunities
	`).Scan(&stats.Total, &stats.HighPriority, &stats.Exploratory, &stats.LastProcessedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	rows, err := s.pool.Query(ctx, "SELECT kind, COUNT(*) FROM opportunities GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("failed to load kind stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		stats.ByKind[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM processed_emails").Scan(&stats.ProcessedEmails); err != nil {
		return nil, fmt.Errorf("failed to count processed emails: %w", err)
	}

	return stats, nil
}

// Cleanup removes records and processed-email markers older than the
// retention window. It returns the number of records deleted.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	tag, err := s.pool.Exec(ctx, "DELETE FROM opportunities WHERE processed_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old records: %w", err)
	}
	if _, err := s.pool.Exec(ctx, "DELETE FROM processed_emails WHERE processed_at < $1", cutoff); err != nil {
		return tag.RowsAffected(), fmt.Errorf("failed to delete old email markers: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nilIfZeroTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
