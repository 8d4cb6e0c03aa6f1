package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/pkg/errors"
	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// ObservationSource reads symptom entries for analysis input.
type ObservationSource struct {
	pool *pgxpool.Pool
}

func NewObservationSource(client *Client) *ObservationSource {
	return &ObservationSource{pool: client.Pool()}
}

func (s *ObservationSource) ListObservations(ctx context.Context, userID common.UserID, start, end time.Time) ([]report.SymptomObservation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT symptom_name, category, severity, note, observed_at
		FROM symptom_entries
		WHERE user_id = $1 AND observed_at >= $2 AND observed_at <= $3
		ORDER BY observed_at DESC`, userID, start, end)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list symptom entries")
	}
	defer rows.Close()

	var obs []report.SymptomObservation
	for rows.Next() {
		var o report.SymptomObservation
		if err := rows.Scan(&o.SymptomName, &o.Category, &o.Severity, &o.Note, &o.ObservedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan symptom entry")
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate symptom entries")
	}
	return obs, nil
}

// DemographicsSource reads the subject demographics for analysis input.
type DemographicsSource struct {
	pool *pgxpool.Pool
}

func NewDemographicsSource(client *Client) *DemographicsSource {
	return &DemographicsSource{pool: client.Pool()}
}

func (s *DemographicsSource) GetDemographics(ctx context.Context, userID common.UserID) (report.Demographics, error) {
	var d report.Demographics
	err := s.pool.QueryRow(ctx, `
		SELECT age, gender, weight_kg, height, nationality
		FROM user_demographics
		WHERE user_id = $1`, userID).
		Scan(&d.Age, &d.Gender, &d.Weight, &d.Height, &d.Nationality)
	if err != nil {
		if err == pgx.ErrNoRows {
			return report.Demographics{}, errors.New(errors.ErrCodeDemographicsNotFound, "no demographics on file")
		}
		return report.Demographics{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query demographics")
	}
	return d, nil
}
