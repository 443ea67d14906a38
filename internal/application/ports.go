package application

import (
	"context"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/render"
)

// Renderer turns diagram source into bytes of the requested format.
type Renderer interface {
	Render(ctx context.Context, source string, format render.Format) ([]byte, error)
}

type RenderCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ProjectIndexer is the full-text index over projects. Search returns ids only;
// rows are always re-read from the store with the owner filter applied.
type ProjectIndexer interface {
	Index(ctx context.Context, p *entity.Project) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, ownerID, query string, size int) ([]string, error)
}

// ObjectStore uploads a blob and returns a URL it can be fetched from.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, body []byte) (string, error)
}

type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
