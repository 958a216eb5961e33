package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"viralvideos/internal/domain"
	"viralvideos/internal/infra"
	"viralvideos/internal/sqlinline"
)

const maxListLimit = 100

// VideoRequestRepository implements domain.VideoRequestRepository on Postgres.
type VideoRequestRepository struct {
	sql infra.SQLExecutor
}

func NewVideoRequestRepository(sql infra.SQLExecutor) *VideoRequestRepository {
	return &VideoRequestRepository{sql: sql}
}

// EnsureSchema creates the tables the service needs when they are missing.
func (r *VideoRequestRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range sqlinline.Schema {
		if _, err := r.sql.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("repo: ensure schema: %w", err)
		}
	}
	return nil
}

// Enqueue validates req, assigns an id and stores it as QUEUED.
func (r *VideoRequestRepository) Enqueue(ctx context.Context, req *domain.VideoRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Model = strings.TrimSpace(req.Model)
	if req.Locale == "" {
		req.Locale = "en"
	}
	row := r.sql.QueryRow(ctx, sqlinline.QEnqueueVideoRequest,
		req.ID,
		req.Prompt,
		req.Width,
		req.Height,
		req.Seconds,
		req.Model,
		req.Locale,
	)
	if err := row.Scan(&req.CreatedAt); err != nil {
		return fmt.Errorf("repo: enqueue video request: %w", err)
	}
	req.UpdatedAt = req.CreatedAt
	req.Status = domain.VideoRequestQueued
	req.Progress = "Queued"
	return nil
}

func (r *VideoRequestRepository) ClaimNext(ctx context.Context) (*domain.VideoRequest, error) {
	req, err := scanVideoRequest(r.sql.QueryRow(ctx, sqlinline.QClaimVideoRequest))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("repo: claim video request: %w", err)
	}
	return req, nil
}

// UpdateProgress records a status line for a running request. Finished
// requests are left untouched.
func (r *VideoRequestRepository) UpdateProgress(ctx context.Context, id, progress string) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QUpdateVideoRequestProgress, id, progress); err != nil {
		return fmt.Errorf("repo: update progress: %w", err)
	}
	return nil
}

func (r *VideoRequestRepository) MarkSucceeded(ctx context.Context, id string, result domain.VideoResult) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QMarkVideoRequestSucceeded,
		id,
		result.Progress,
		result.OutputPath,
		result.Bytes,
		result.RemoteJobID,
	)
	if err != nil {
		return fmt.Errorf("repo: mark succeeded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VideoRequestRepository) MarkFailed(ctx context.Context, id, kind, message string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QMarkVideoRequestFailed, id, "Error: "+message, kind, message)
	if err != nil {
		return fmt.Errorf("repo: mark failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RequeueRunning returns requests left RUNNING by a stopped worker to the queue.
func (r *VideoRequestRepository) RequeueRunning(ctx context.Context) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QRequeueRunningVideoRequests)
	if err != nil {
		return 0, fmt.Errorf("repo: requeue running: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *VideoRequestRepository) Get(ctx context.Context, id string) (*domain.VideoRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	req, err := scanVideoRequest(r.sql.QueryRow(ctx, sqlinline.QSelectVideoRequest, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("repo: get video request: %w", err)
	}
	return req, nil
}

func (r *VideoRequestRepository) ListRecent(ctx context.Context, limit, offset int) ([]domain.VideoRequest, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListVideoRequests, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("repo: list video requests: %w", err)
	}
	defer rows.Close()

	var out []domain.VideoRequest
	for rows.Next() {
		req, err := scanVideoRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("repo: scan video request: %w", err)
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: list video requests: %w", err)
	}
	return out, nil
}

func scanVideoRequest(row pgx.Row) (*domain.VideoRequest, error) {
	var req domain.VideoRequest
	if err := row.Scan(
		&req.ID,
		&req.Prompt,
		&req.Width,
		&req.Height,
		&req.Seconds,
		&req.Model,
		&req.Locale,
		&req.Status,
		&req.Progress,
		&req.OutputPath,
		&req.Bytes,
		&req.RemoteJobID,
		&req.ErrorKind,
		&req.ErrorMessage,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

var _ domain.VideoRequestRepository = (*VideoRequestRepository)(nil)
