package repo

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/taskroom/taskroom/internal/infra/db"
	"github.com/taskroom/taskroom/internal/modules/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(d))
	return d
}

func date(y int, m time.Month, d int) datatypes.Date {
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func seedUser(t *testing.T, d *gorm.DB, username string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Password: "x", UserType: role}
	require.NoError(t, NewUserRepo(d).Create(context.Background(), u))
	return u
}

func seedProject(t *testing.T, d *gorm.DB, label string) *model.Project {
	t.Helper()
	p := &model.Project{Label: label}
	require.NoError(t, NewProjectRepo(d).Create(context.Background(), p))
	return p
}

func seedTask(t *testing.T, d *gorm.DB, projectID, authorID uint, assignees ...uint) *model.Task {
	t.Helper()
	tk := &model.Task{
		TaskProjectID: projectID,
		TaskAuthorID:  authorID,
		Label:         "task",
		StartDate:     date(2024, 1, 1),
		EndDate:       date(2024, 1, 31),
		TaskPriority:  model.PriorityLow,
		TaskStatus:    model.StatusScheduled,
	}
	require.NoError(t, NewTaskRepo(d).Create(context.Background(), tk, assignees))
	return tk
}
