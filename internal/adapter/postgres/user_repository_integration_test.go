package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/tasklists/internal/domain"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewUserRepo(pool)
	ctx := context.Background()

	created := createTestUser(t, pool, "ada@example.com")
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.IsVerified)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)
	assert.Equal(t, "$2a$10$hash", byID.PasswordHash)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	pool := setupTestDB(t)
	createTestUser(t, pool, "ada@example.com")

	_, err := NewUserRepo(pool).Create(context.Background(), domain.NewUser{
		Email: "ada@example.com", PasswordHash: "x", Name: "A", Surname: "B",
	})

	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserRepo_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewUserRepo(pool)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
