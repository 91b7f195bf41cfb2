//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
)

func TestPostgres_MigrateAndUniqueVote(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("queryhub"),
		postgres.WithUsername("queryhub"),
		postgres.WithPassword("queryhub"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	for _, driver := range []string{"pgx", "postgres"} {
		t.Run(driver, func(t *testing.T) {
			db, err := OpenPostgres(driver, dsn, false)
			require.NoError(t, err)
			require.NoError(t, Migrate(db))

			user := models.User{Username: "int_" + driver, Email: driver + "@queryhub.test", Password: "x"}
			require.NoError(t, db.Create(&user).Error)

			vote := models.Vote{UserID: user.ID, TargetKind: models.TargetQuestion, TargetID: 1, Direction: models.Upvote}
			require.NoError(t, db.Create(&vote).Error)

			dup := models.Vote{UserID: user.ID, TargetKind: models.TargetQuestion, TargetID: 1, Direction: models.Downvote}
			err = db.Create(&dup).Error
			assert.True(t, IsUniqueViolation(err))

			stats := Wrap(db, driver).Health(ctx)
			assert.Equal(t, "up", stats["status"])
		})
	}
}
