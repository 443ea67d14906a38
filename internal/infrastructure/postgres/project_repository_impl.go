package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/repository"
)

const projectColumns = `id, owner_id, name, description, content, created_at, updated_at`

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*entity.Project, error) {
	p := &entity.Project{}
	if err := s.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO projects (owner_id, name, description, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.OwnerID, p.Name, p.Description, p.Content)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return mapWriteErr("insert project", err)
	}
	return nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Project, error) {
	if !validID(ownerID) {
		return []entity.Project{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []entity.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// GetOwned filters by id and owner in one statement: a foreign project is
// indistinguishable from a missing one.
func (r *ProjectRepository) GetOwned(ctx context.Context, id, ownerID string) (*entity.Project, error) {
	if !validID(id) || !validID(ownerID) {
		return nil, errs.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) UpdateOwned(ctx context.Context, id, ownerID string, patch entity.ProjectPatch) (*entity.Project, error) {
	if !validID(id) || !validID(ownerID) {
		return nil, errs.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE projects
		SET name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    content = COALESCE($5, content),
		    updated_at = GREATEST(now(), created_at)
		WHERE id = $1 AND owner_id = $2
		RETURNING `+projectColumns,
		id, ownerID, patch.Name, patch.Description, patch.Content)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	if !validID(id) || !validID(ownerID) {
		return errs.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)
