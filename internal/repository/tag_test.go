package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
)

func TestTagRepository(t *testing.T) {
	repos := New(setupTestDB(t))
	ctx := context.Background()

	author := seedUser(t, repos, "tagger")
	q1 := seedQuestion(t, repos, author, "one", "body", "go", "gorm")
	seedQuestion(t, repos, author, "two", "body", "go")

	t.Run("names are stored lower-case and unique", func(t *testing.T) {
		tag := &models.Tag{Name: "  Rust "}
		require.NoError(t, repos.Tags.Create(ctx, tag))
		assert.Equal(t, "rust", tag.Name)
		assert.ErrorIs(t, repos.Tags.Create(ctx, &models.Tag{Name: "RUST"}), ErrConflict)
	})

	t.Run("usage count is derived", func(t *testing.T) {
		tag, err := repos.Tags.GetByName(ctx, "GO")
		require.NoError(t, err)
		require.NotNil(t, tag)
		assert.Equal(t, int64(2), tag.UsageCount)

		n, err := repos.Tags.QuestionCount(ctx, tag.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("popular orders by usage", func(t *testing.T) {
		tags, err := repos.Tags.Popular(ctx, 2)
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, "go", tags[0].Name)
		assert.Equal(t, "gorm", tags[1].Name)
	})

	t.Run("list filters by substring", func(t *testing.T) {
		tags, err := repos.Tags.List(ctx, "GO")
		require.NoError(t, err)
		assert.Len(t, tags, 2)
	})

	t.Run("linking twice is a no-op and clear unlinks", func(t *testing.T) {
		gormTag, err := repos.Tags.GetByName(ctx, "gorm")
		require.NoError(t, err)
		require.NoError(t, repos.Tags.AddToQuestion(ctx, q1.ID, gormTag.ID))

		tags, err := repos.Tags.ListByQuestion(ctx, q1.ID)
		require.NoError(t, err)
		assert.Len(t, tags, 2)

		require.NoError(t, repos.Tags.ClearQuestion(ctx, q1.ID))
		tags, err = repos.Tags.ListByQuestion(ctx, q1.ID)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})

	t.Run("update to an existing name conflicts", func(t *testing.T) {
		rust, err := repos.Tags.GetByName(ctx, "rust")
		require.NoError(t, err)
		rust.Name = "go"
		assert.ErrorIs(t, repos.Tags.Update(ctx, rust), ErrConflict)
	})
}

func TestTagRepository_ListTreatsWildcardsLiterally(t *testing.T) {
	repos := New(setupTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"c_c", "cxc", "100%", "1000"} {
		require.NoError(t, repos.Tags.Create(ctx, &models.Tag{Name: name}))
	}

	names := func(term string) []string {
		tags, err := repos.Tags.List(ctx, term)
		require.NoError(t, err)
		var out []string
		for _, tag := range tags {
			out = append(out, tag.Name)
		}
		return out
	}

	assert.Equal(t, []string{"c_c"}, names("_"))
	assert.Equal(t, []string{"100%"}, names("0%"))
	assert.Equal(t, []string{"c_c", "cxc"}, names("c"))
}
