package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/queryhub/backend/internal/database"
	"github.com/emilythestrangee/queryhub/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, repos *Repositories, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@queryhub.test", Password: "hash"}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u
}

func seedQuestion(t *testing.T, repos *Repositories, author *models.User, title, body string, tags ...string) *models.Question {
	t.Helper()
	ctx := context.Background()
	q := &models.Question{Title: title, Body: body, UserID: author.ID}
	require.NoError(t, repos.Questions.Create(ctx, q))
	for _, name := range tags {
		tag, err := repos.Tags.GetByName(ctx, name)
		require.NoError(t, err)
		if tag == nil {
			tag = &models.Tag{Name: name}
			require.NoError(t, repos.Tags.Create(ctx, tag))
		}
		require.NoError(t, repos.Tags.AddToQuestion(ctx, q.ID, tag.ID))
	}
	return q
}
