package postgres

import (
	"context"
	"fmt"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
)

type InsightRepo struct {
	db DB
}

func (r *InsightRepo) Create(ctx context.Context, in *domain.Insight) error {
	const op = "postgres.InsightRepo.Create"

	_, err := r.db.Exec(ctx,
		`INSERT INTO insights (id, type, title, message, severity, icon, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.ID, string(in.Type), in.Title, in.Message, in.Severity, in.Icon, in.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *InsightRepo) List(ctx context.Context) ([]domain.Insight, error) {
	const op = "postgres.InsightRepo.List"

	rows, err := r.db.Query(ctx,
		`SELECT id, type, title, message, severity, icon, timestamp
		 FROM insights
		 ORDER BY timestamp DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Insight
	for rows.Next() {
		var in domain.Insight
		var typ string
		if err := rows.Scan(&in.ID, &typ, &in.Title, &in.Message, &in.Severity, &in.Icon, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		in.Type = domain.InsightType(typ)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}
