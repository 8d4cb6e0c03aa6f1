package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	"github.com/medmuse/medmuse-backend/pkg/errors"
	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// ReportStore implements report.Store on PostgreSQL.
type ReportStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

func NewReportStore(client *Client, logger logging.Logger) *ReportStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReportStore{pool: client.Pool(), logger: logger.Named("report-store")}
}

const reportColumns = `id, user_id, period_start, period_end, generated_at,
	health_summary, risk_areas, recommendations, provider, artifact_ref`

func scanReport(row pgx.Row) (*report.Report, error) {
	var r report.Report
	err := row.Scan(
		&r.ID, &r.UserID, &r.PeriodStart, &r.PeriodEnd, &r.GeneratedAt,
		&r.HealthSummary, &r.RiskAreas, &r.Recommendations, &r.Provider, &r.ArtifactRef,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReportStore) Save(ctx context.Context, r *report.Report) (*report.Report, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO reports (user_id, period_start, period_end,
			health_summary, risk_areas, recommendations, provider, artifact_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '')
		RETURNING `+reportColumns,
		r.UserID, r.PeriodStart, r.PeriodEnd,
		r.HealthSummary, r.RiskAreas, r.Recommendations, r.Provider,
	)

	saved, err := scanReport(row)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert report")
	}
	return saved, nil
}

func (s *ReportStore) AttachArtifact(ctx context.Context, id common.ReportID, ref string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE reports SET artifact_ref = $2 WHERE id = $1`, id, ref)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to attach artifact")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeReportNotFound, "report not found")
	}
	return nil
}

func (s *ReportStore) FindByID(ctx context.Context, userID common.UserID, id common.ReportID) (*report.Report, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE id = $1 AND user_id = $2`, id, userID)

	r, err := scanReport(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrCodeReportNotFound, "report not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query report")
	}
	return r, nil
}

func (s *ReportStore) ListByUser(ctx context.Context, userID common.UserID, page common.PageRequest) (common.Page[*report.Report], error) {
	page = page.Normalize()
	empty := common.Page[*report.Report]{Page: page.Page, PageSize: page.PageSize}

	var total int64
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM reports WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return empty, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count reports")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE user_id = $1
		ORDER BY generated_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, page.PageSize, page.Offset())
	if err != nil {
		return empty, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list reports")
	}
	defer rows.Close()

	items := make([]*report.Report, 0, page.PageSize)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return empty, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan report")
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return empty, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate reports")
	}

	return common.Page[*report.Report]{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: total,
	}, nil
}

func (s *ReportStore) Delete(ctx context.Context, userID common.UserID, id common.ReportID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete report")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeReportNotFound, "report not found")
	}
	return nil
}
