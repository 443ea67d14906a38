package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/render"
	repo "github.com/oksasatya/go-diagram-workspace/internal/domain/repository"
)

const searchLimit = 20

// ProjectService exposes project CRUD scoped to the calling principal.
// Every method requires a principal; all store access filters by its user id.
type ProjectService struct {
	Repo   repo.ProjectRepository
	Logger *logrus.Logger

	// Optional collaborators.
	Index   ProjectIndexer
	Render  *RenderService
	Objects ObjectStore
}

func NewProjectService(r repo.ProjectRepository, logger *logrus.Logger) *ProjectService {
	return &ProjectService{Repo: r, Logger: logger}
}

type CreateProjectInput struct {
	Name        string
	Description string
	Content     string
}

// UpdateProjectInput leaves nil fields untouched; an empty string is a value.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Content     *string
}

type ExportResult struct {
	URL         string `json:"url"`
	ObjectPath  string `json:"object_path"`
	ContentType string `json:"content_type"`
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errs.NewValidation("name", "must not be blank")
	}
	if utf8.RuneCountInString(name) > entity.ProjectNameMax {
		return "", errs.NewValidation("name", fmt.Sprintf("must be at most %d characters long", entity.ProjectNameMax))
	}
	return name, nil
}

func validateDescription(d string) error {
	if utf8.RuneCountInString(d) > entity.ProjectDescriptionMax {
		return errs.NewValidation("description", fmt.Sprintf("must be at most %d characters long", entity.ProjectDescriptionMax))
	}
	return nil
}

func (s *ProjectService) Create(ctx context.Context, p *entity.Principal, in CreateProjectInput) (*entity.Project, error) {
	if p == nil {
		return nil, errs.ErrAuthentication
	}
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}

	project := &entity.Project{
		OwnerID:     p.UserID,
		Name:        name,
		Description: in.Description,
		Content:     in.Content,
	}
	if err := s.Repo.Create(ctx, project); err != nil {
		return nil, err
	}
	s.reindex(ctx, project)
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, p *entity.Principal) ([]entity.Project, error) {
	if p == nil {
		return nil, errs.ErrAuthentication
	}
	return s.Repo.ListByOwner(ctx, p.UserID)
}

func (s *ProjectService) Get(ctx context.Context, p *entity.Principal, id string) (*entity.Project, error) {
	if p == nil {
		return nil, errs.ErrAuthentication
	}
	return s.Repo.GetOwned(ctx, id, p.UserID)
}

func (s *ProjectService) Update(ctx context.Context, p *entity.Principal, id string, in UpdateProjectInput) (*entity.Project, error) {
	if p == nil {
		return nil, errs.ErrAuthentication
	}
	patch := entity.ProjectPatch{Description: in.Description, Content: in.Content}
	if in.Name != nil {
		name, err := validateName(*in.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if in.Description != nil {
		if err := validateDescription(*in.Description); err != nil {
			return nil, err
		}
	}

	project, err := s.Repo.UpdateOwned(ctx, id, p.UserID, patch)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, project)
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, p *entity.Principal, id string) error {
	if p == nil {
		return errs.ErrAuthentication
	}
	if err := s.Repo.DeleteOwned(ctx, id, p.UserID); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			s.Logger.WithError(err).WithField("project_id", id).Warn("search index remove failed")
		}
	}
	return nil
}

// Search finds the principal's projects matching query. Without an index it
// falls back to a case-insensitive substring match over List.
func (s *ProjectService) Search(ctx context.Context, p *entity.Principal, query string) ([]entity.Project, error) {
	if p == nil {
		return nil, errs.ErrAuthentication
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, p)
	}
	if s.Index == nil {
		return s.searchLocal(ctx, p, query)
	}

	ids, err := s.Index.Search(ctx, p.UserID, query, searchLimit)
	if err != nil {
		s.Logger.WithError(err).Warn("search index query failed, falling back to store")
		return s.searchLocal(ctx, p, query)
	}
	out := make([]entity.Project, 0, len(ids))
	for _, id := range ids {
		project, err := s.Repo.GetOwned(ctx, id, p.UserID)
		if errors.Is(err, errs.ErrNotFound) {
			continue // stale index entry
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *project)
	}
	return out, nil
}

func (s *ProjectService) searchLocal(ctx context.Context, p *entity.Principal, query string) ([]entity.Project, error) {
	all, err := s.Repo.ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := []entity.Project{}
	for _, project := range all {
		if strings.Contains(strings.ToLower(project.Name), q) ||
			strings.Contains(strings.ToLower(project.Description), q) ||
			strings.Contains(strings.ToLower(project.Content), q) {
			out = append(out, project)
		}
		if len(out) == searchLimit {
			break
		}
	}
	return out, nil
}

// Export renders an owned project and uploads the result to object storage.
func (s *ProjectService) Export(ctx context.Context, p *entity.Principal, id string, format render.Format) (*ExportResult, error) {
	if p == nil {
		return nil, errs.ErrAuthentication
	}
	if s.Objects == nil || s.Render == nil {
		return nil, errs.ErrUnavailable
	}
	project, err := s.Repo.GetOwned(ctx, id, p.UserID)
	if err != nil {
		return nil, err
	}
	out, err := s.Render.Render(ctx, project.Content, format)
	if err != nil {
		return nil, err
	}

	objectPath := fmt.Sprintf("exports/%s/%s/%s%s", p.UserID, project.ID, uuid.NewString(), format.Extension())
	url, err := s.Objects.Upload(ctx, objectPath, format.ContentType(), out)
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{"project_id": project.ID, "object": objectPath}).Info("project exported")
	return &ExportResult{URL: url, ObjectPath: objectPath, ContentType: format.ContentType()}, nil
}

func (s *ProjectService) reindex(ctx context.Context, project *entity.Project) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, project); err != nil {
		s.Logger.WithError(err).WithField("project_id", project.ID).Warn("search index update failed")
	}
}
