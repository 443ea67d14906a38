package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
)

const (
	projectID = "9a0d4c2e-1f3b-4e5a-8c7d-6b5a4f3e2d10"
	otherUser = "3c2b1a09-8f7e-4d6c-9b5a-4e3d2c1b0a99"
)

var projectCols = []string{"id", "owner_id", "name", "description", "content", "created_at", "updated_at"}

func TestProjectRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT INTO projects \(owner_id, name, description, content\).*RETURNING id, created_at, updated_at`).
		WithArgs(userID, "P1", "", "@startuml\n@enduml").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(projectID, now, now))

	p := &entity.Project{OwnerID: userID, Name: "P1", Content: "@startuml\n@enduml"}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, projectID, p.ID)
}

func TestProjectRepository_ListByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM projects\s+WHERE owner_id = \$1\s+ORDER BY created_at, id`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(projectID, userID, "P1", "", "", now, now).
			AddRow("1d2c3b4a-5e6f-4a8b-9c0d-1e2f3a4b5c6d", userID, "P2", "d", "c", now, now))

	list, err := repo.ListByOwner(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "P1", list[0].Name)
	assert.Equal(t, "P2", list[1].Name)
}

func TestProjectRepository_ListByOwner_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectQuery(`FROM projects`).WithArgs(userID).WillReturnRows(sqlmock.NewRows(projectCols))

	list, err := repo.ListByOwner(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestProjectRepository_GetOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM projects\s+WHERE id = \$1 AND owner_id = \$2`).
		WithArgs(projectID, userID).
		WillReturnRows(sqlmock.NewRows(projectCols).AddRow(projectID, userID, "P1", "", "x", now, now))
	mock.ExpectQuery(`(?s)FROM projects\s+WHERE id = \$1 AND owner_id = \$2`).
		WithArgs(projectID, otherUser).
		WillReturnError(sql.ErrNoRows)

	p, err := repo.GetOwned(context.Background(), projectID, userID)
	require.NoError(t, err)
	assert.Equal(t, "x", p.Content)

	_, err = repo.GetOwned(context.Background(), projectID, otherUser)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.GetOwned(context.Background(), "42", userID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestProjectRepository_UpdateOwned_PartialPatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	created := time.Now().Add(-time.Hour)
	now := time.Now()
	name := "renamed"

	mock.ExpectQuery(`(?s)UPDATE projects\s+SET name = COALESCE\(\$3, name\).*updated_at = GREATEST\(now\(\), created_at\)\s+WHERE id = \$1 AND owner_id = \$2\s+RETURNING`).
		WithArgs(projectID, userID, "renamed", nil, nil).
		WillReturnRows(sqlmock.NewRows(projectCols).AddRow(projectID, userID, "renamed", "old", "body", created, now))

	p, err := repo.UpdateOwned(context.Background(), projectID, userID, entity.ProjectPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", p.Name)
	assert.Equal(t, "old", p.Description)
	assert.Equal(t, "body", p.Content)
	assert.False(t, p.UpdatedAt.Before(p.CreatedAt))
}

func TestProjectRepository_UpdateOwned_Foreign(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	empty := ""

	mock.ExpectQuery(`UPDATE projects`).
		WithArgs(projectID, otherUser, nil, "", nil).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateOwned(context.Background(), projectID, otherUser, entity.ProjectPatch{Description: &empty})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestProjectRepository_DeleteOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1 AND owner_id = \$2`).
		WithArgs(projectID, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs(projectID, otherUser).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs(projectID, userID).
		WillReturnError(errors.New("conn reset"))

	require.NoError(t, repo.DeleteOwned(context.Background(), projectID, userID))
	assert.ErrorIs(t, repo.DeleteOwned(context.Background(), projectID, otherUser), errs.ErrNotFound)

	err := repo.DeleteOwned(context.Background(), projectID, userID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestRoleRepository_EnsureDefaults(t *testing.T) {
	t.Run("empty table is seeded", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRoleRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM roles`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO roles`).WithArgs("USER").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO roles`).WithArgs("ADMIN").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.EnsureDefaults(context.Background()))
	})

	t.Run("populated table is left alone", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRoleRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM roles`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		require.NoError(t, repo.EnsureDefaults(context.Background()))
	})
}

func TestRoleRepository_GetByName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoleRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM roles\s+WHERE name = \$1`).
		WithArgs("USER").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).AddRow(roleID, "USER", now, now))
	mock.ExpectQuery(`FROM roles\s+WHERE name = \$1`).
		WithArgs("ADMIN").
		WillReturnError(sql.ErrNoRows)

	role, err := repo.GetByName(context.Background(), entity.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, role.Name)

	_, err = repo.GetByName(context.Background(), entity.RoleAdmin)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
