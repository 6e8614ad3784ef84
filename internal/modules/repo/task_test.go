package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"gorm.io/gorm"
)

func TestTaskRepo_CreateAndGet(t *testing.T) {
	d := newTestDB(t)
	r := NewTaskRepo(d)
	ctx := context.Background()

	admin := seedUser(t, d, "admin", model.RoleAdmin)
	bob := seedUser(t, d, "bob", model.RoleMember)
	p := seedProject(t, d, "p")

	tk := seedTask(t, d, p.ID, admin.ID, bob.ID, admin.ID, bob.ID)

	got, err := r.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{admin.ID, bob.ID}, got.AssigneeIDs())
	assert.Equal(t, admin.ID, got.TaskAuthorID)
	assert.Nil(t, got.Description)
}

func TestTaskRepo_UpdateAssignees(t *testing.T) {
	d := newTestDB(t)
	r := NewTaskRepo(d)
	ctx := context.Background()

	admin := seedUser(t, d, "admin", model.RoleAdmin)
	bob := seedUser(t, d, "bob", model.RoleMember)
	carol := seedUser(t, d, "carol", model.RoleMember)
	p := seedProject(t, d, "p")
	tk := seedTask(t, d, p.ID, admin.ID, bob.ID)

	tk.TaskStatus = model.StatusInProgress
	require.NoError(t, r.Update(ctx, tk, nil))
	got, err := r.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.TaskStatus)
	assert.Equal(t, []uint{bob.ID}, got.AssigneeIDs())

	require.NoError(t, r.Update(ctx, tk, []uint{carol.ID}))
	got, err = r.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{carol.ID}, got.AssigneeIDs())

	require.NoError(t, r.Update(ctx, tk, []uint{}))
	got, err = r.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AssigneeIDs())

	missing := *tk
	missing.ID = 999
	assert.ErrorIs(t, r.Update(ctx, &missing, nil), gorm.ErrRecordNotFound)
}

func TestTaskRepo_ListFilter(t *testing.T) {
	d := newTestDB(t)
	r := NewTaskRepo(d)
	ctx := context.Background()

	admin := seedUser(t, d, "admin", model.RoleAdmin)
	p1 := seedProject(t, d, "p1")
	p2 := seedProject(t, d, "p2")
	seedTask(t, d, p1.ID, admin.ID)
	seedTask(t, d, p1.ID, admin.ID)
	seedTask(t, d, p2.ID, admin.ID, admin.ID)

	items, total, err := r.List(ctx, TaskFilter{ProjectID: &p1.ID}, paging.Params{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 1)

	items, total, err = r.List(ctx, TaskFilter{}, paging.Params{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.Equal(t, []uint{admin.ID}, items[2].AssigneeIDs())
}

func TestTaskRepo_Delete(t *testing.T) {
	d := newTestDB(t)
	r := NewTaskRepo(d)
	ctx := context.Background()

	admin := seedUser(t, d, "admin", model.RoleAdmin)
	p := seedProject(t, d, "p")
	tk := seedTask(t, d, p.ID, admin.ID, admin.ID)

	require.NoError(t, r.Delete(ctx, tk.ID))
	_, err := r.Get(ctx, tk.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var n int64
	require.NoError(t, d.Model(&taskAssignee{}).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, r.Delete(ctx, tk.ID), gorm.ErrRecordNotFound)
}
