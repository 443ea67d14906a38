package repository

import (
	"context"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
)

// ProjectRepository stores projects. Every read and mutation is scoped by
// owner so a caller can never reach another user's rows.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Project, error)
	GetOwned(ctx context.Context, id, ownerID string) (*entity.Project, error)
	UpdateOwned(ctx context.Context, id, ownerID string, patch entity.ProjectPatch) (*entity.Project, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
}
