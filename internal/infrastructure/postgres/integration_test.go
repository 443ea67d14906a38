//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	repo "github.com/oksasatya/go-diagram-workspace/internal/infrastructure/postgres"
	"github.com/oksasatya/go-diagram-workspace/pkg/helpers"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "diagrams_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/diagrams_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories_OwnershipScope(t *testing.T) {
	ctx := context.Background()
	pool, err := repo.NewPool(ctx, dsn, 4, 1, time.Hour)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	db := repo.OpenDB(pool)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, repo.RunMigrations(db, "../../../db/migrations", helpers.NopLogger()))

	roles := repo.NewRoleRepository(db)
	users := repo.NewUserRepository(db)
	projects := repo.NewProjectRepository(db)

	require.NoError(t, roles.EnsureDefaults(ctx))
	userRole, err := roles.GetByName(ctx, entity.RoleUser)
	require.NoError(t, err)

	alice := &entity.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h", Roles: []entity.Role{*userRole}}
	require.NoError(t, users.Create(ctx, alice))
	bob := &entity.User{Username: "bob", Email: "bob@example.com", PasswordHash: "h", Roles: []entity.Role{*userRole}}
	require.NoError(t, users.Create(ctx, bob))

	t.Run("duplicate username maps to conflict", func(t *testing.T) {
		err := users.Create(ctx, &entity.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
		var ce *errs.ConflictError
		require.True(t, errors.As(err, &ce), "got %v", err)
		assert.Equal(t, "username", ce.Field)
	})

	t.Run("roles are loaded with the user", func(t *testing.T) {
		u, err := users.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []entity.RoleName{entity.RoleUser}, u.RoleNames())
	})

	p := &entity.Project{OwnerID: alice.ID, Name: "P1", Content: "@startuml\nA -> B\n@enduml"}
	require.NoError(t, projects.Create(ctx, p))

	t.Run("foreign owner sees nothing", func(t *testing.T) {
		_, err := projects.GetOwned(ctx, p.ID, bob.ID)
		assert.ErrorIs(t, err, errs.ErrNotFound)

		name := "stolen"
		_, err = projects.UpdateOwned(ctx, p.ID, bob.ID, entity.ProjectPatch{Name: &name})
		assert.ErrorIs(t, err, errs.ErrNotFound)

		assert.ErrorIs(t, projects.DeleteOwned(ctx, p.ID, bob.ID), errs.ErrNotFound)

		list, err := projects.ListByOwner(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("owner updates and deletes", func(t *testing.T) {
		desc := ""
		got, err := projects.UpdateOwned(ctx, p.ID, alice.ID, entity.ProjectPatch{Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, "P1", got.Name)
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

		require.NoError(t, projects.DeleteOwned(ctx, p.ID, alice.ID))
		_, err = projects.GetOwned(ctx, p.ID, alice.ID)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}
