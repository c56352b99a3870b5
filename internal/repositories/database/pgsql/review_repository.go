package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_pipeline/internal/models"
	"github.com/SscSPs/invoice_pipeline/internal/utils/mapping"
	"github.com/SscSPs/invoice_pipeline/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `task_id, candidate, suggested, rule_reason, status, requested_at, decided_at, decided_by, comment`

type PgxReviewRepository struct {
	BaseRepository
}

// newPgxReviewRepository creates a new repository for review requests.
func newPgxReviewRepository(pool *pgxpool.Pool) *PgxReviewRepository {
	return &PgxReviewRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReviewRepositoryFacade = (*PgxReviewRepository)(nil)

func scanReview(row pgx.Row) (models.ReviewRequest, error) {
	var m models.ReviewRequest
	err := row.Scan(
		&m.TaskID,
		&m.Candidate,
		&m.Suggested,
		&m.RuleReason,
		&m.Status,
		&m.RequestedAt,
		&m.DecidedAt,
		&m.DecidedBy,
		&m.Comment,
	)
	return m, err
}

func (r *PgxReviewRepository) SaveReviewRequest(ctx context.Context, request domain.ReviewRequest) error {
	m, err := mapping.ToModelReviewRequest(request)
	if err != nil {
		return fmt.Errorf("failed to encode review request for task %s: %w", request.TaskID, err)
	}

	query := `INSERT INTO review_requests (` + reviewColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err = r.Pool.Exec(ctx, query,
		m.TaskID, m.Candidate, m.Suggested, m.RuleReason, m.Status,
		m.RequestedAt, m.DecidedAt, m.DecidedBy, m.Comment,
	)
	if err != nil {
		return duplicateOr(err,
			fmt.Sprintf("review request for task %s already exists", m.TaskID),
			fmt.Sprintf("failed to save review request for task %s", m.TaskID))
	}
	return nil
}

func (r *PgxReviewRepository) FindReviewRequest(ctx context.Context, taskID string) (*domain.ReviewRequest, error) {
	query := `SELECT ` + reviewColumns + ` FROM review_requests WHERE task_id = $1;`
	m, err := scanReview(r.Pool.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find review request for task %s: %w", taskID, err)
	}
	return mapping.ToDomainReviewRequest(m)
}

// ListPendingReviews pages oldest first using a (requested_at, task_id) keyset.
func (r *PgxReviewRepository) ListPendingReviews(ctx context.Context, limit int, nextToken *string) ([]domain.ReviewRequest, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + reviewColumns + ` FROM review_requests WHERE status = $1`
	args := []any{string(domain.ReviewPending)}
	if nextToken != nil && *nextToken != "" {
		afterTime, afterID, err := pagination.DecodeTimeIDToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (requested_at, task_id) > ($2, $3)`
		args = append(args, afterTime, afterID)
	}
	query += fmt.Sprintf(` ORDER BY requested_at ASC, task_id ASC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	modelRequests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ReviewRequest, error) {
		return scanReview(row)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan review requests: %w", err)
	}

	requests := make([]domain.ReviewRequest, 0, len(modelRequests))
	for _, m := range modelRequests {
		d, err := mapping.ToDomainReviewRequest(m)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode review request for task %s: %w", m.TaskID, err)
		}
		requests = append(requests, *d)
	}
	return cutPage(requests, limit, func(request domain.ReviewRequest) (time.Time, string) {
		return request.RequestedAt, request.TaskID
	})
}

// CloseReviewRequest only touches pending rows, so two concurrent decisions cannot both win.
func (r *PgxReviewRepository) CloseReviewRequest(ctx context.Context, taskID string, status domain.ReviewStatus, decidedBy, comment string, decidedAt time.Time) error {
	query := `
		UPDATE review_requests
		SET status = $2, decided_by = NULLIF($3, ''), comment = NULLIF($4, ''), decided_at = $5
		WHERE task_id = $1 AND status = $6;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, taskID, string(status), decidedBy, comment, decidedAt, string(domain.ReviewPending))
	if err != nil {
		return fmt.Errorf("failed to close review request for task %s: %w", taskID, err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = r.Pool.QueryRow(ctx, `SELECT status FROM review_requests WHERE task_id = $1;`, taskID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read review request for task %s: %w", taskID, err)
	}
	return fmt.Errorf("%w: review for task %s is already %s", apperrors.ErrConflict, taskID, current)
}
