// Package memory keeps users, roles and projects in process memory. It backs
// STORE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/repository"
)

type Store struct {
	mu sync.RWMutex

	now func() time.Time

	users      map[string]*entity.User // by id
	byUsername map[string]string
	byEmail    map[string]string

	roles map[entity.RoleName]*entity.Role

	projects     map[string]*entity.Project
	projectOrder []string
}

func NewStore() *Store {
	return &Store{
		now:        time.Now,
		users:      map[string]*entity.User{},
		byUsername: map[string]string{},
		byEmail:    map[string]string{},
		roles:      map[entity.RoleName]*entity.Role{},
		projects:   map[string]*entity.Project{},
	}
}

// SetClock is used by tests that need deterministic timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) PingContext(ctx context.Context) error { return ctx.Err() }

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Roles() *RoleRepository       { return &RoleRepository{s: s} }
func (s *Store) Projects() *ProjectRepository { return &ProjectRepository{s: s} }

func copyUser(u *entity.User) *entity.User {
	c := *u
	c.Roles = append([]entity.Role(nil), u.Roles...)
	return &c
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[u.Username]; ok {
		return &errs.ConflictError{Field: "username"}
	}
	if _, ok := s.byEmail[u.Email]; ok {
		return &errs.ConflictError{Field: "email"}
	}
	for _, role := range u.Roles {
		if _, ok := s.roles[role.Name]; !ok {
			return &errs.ConfigurationError{Key: "roles", Reason: "unknown role " + string(role.Name)}
		}
	}

	now := s.now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = copyUser(u)
	s.byUsername[u.Username] = u.ID
	s.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byUsername[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return copyUser(r.s.users[id]), nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.byUsername[username]
	return ok, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.byEmail[email]
	return ok, nil
}

func (r *UserRepository) AddRole(ctx context.Context, userID string, role entity.Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	for _, have := range u.Roles {
		if have.Name == role.Name {
			return nil
		}
	}
	u.Roles = append(u.Roles, role)
	return nil
}

type RoleRepository struct{ s *Store }

func (r *RoleRepository) GetByName(ctx context.Context, name entity.RoleName) (*entity.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role, ok := r.s.roles[name]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *role
	return &c, nil
}

func (r *RoleRepository) EnsureDefaults(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.roles) > 0 {
		return nil
	}
	now := r.s.now()
	for _, name := range entity.DefaultRoles {
		r.s.roles[name] = &entity.Role{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	}
	return nil
}

type ProjectRepository struct{ s *Store }

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[p.OwnerID]; !ok {
		return errs.ErrNotFound
	}
	now := r.s.now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	c := *p
	r.s.projects[p.ID] = &c
	r.s.projectOrder = append(r.s.projectOrder, p.ID)
	return nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Project{}
	for _, id := range r.s.projectOrder {
		p, ok := r.s.projects[id]
		if ok && p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *ProjectRepository) GetOwned(ctx context.Context, id, ownerID string) (*entity.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok || p.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *ProjectRepository) UpdateOwned(ctx context.Context, id, ownerID string, patch entity.ProjectPatch) (*entity.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok || p.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	p.UpdatedAt = r.s.now()
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
	c := *p
	return &c, nil
}

func (r *ProjectRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok || p.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(r.s.projects, id)
	for i, pid := range r.s.projectOrder {
		if pid == id {
			r.s.projectOrder = append(r.s.projectOrder[:i], r.s.projectOrder[i+1:]...)
			break
		}
	}
	return nil
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.RoleRepository    = (*RoleRepository)(nil)
	_ repository.ProjectRepository = (*ProjectRepository)(nil)
)
