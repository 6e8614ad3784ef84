package repo

import (
	"context"

	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserFilter struct {
	// users assigned to at least one task of the project
	ProjectID *uint
}

type UserRepo interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.User, error)
	List(ctx context.Context, f UserFilter, p paging.Params) ([]model.User, int64, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint) error
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

func (r *userRepo) Get(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	return &u, r.db.WithContext(ctx).First(&u, id).Error
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	return &u, r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
}

// GetByEmail returns the oldest account registered with email.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	return &u, r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).Order("id ASC").First(&u).Error
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	return users, r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error
}

func (r *userRepo) List(ctx context.Context, f UserFilter, p paging.Params) ([]model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if f.ProjectID != nil {
		assigned := r.db.Table("task_assignees").
			Select("task_assignees.user_id").
			Joins("JOIN tasks ON tasks.id = task_assignees.task_id").
			Where("tasks.task_project_id = ?", *f.ProjectID)
		q = q.Where("id IN (?)", assigned)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := q.Order("id ASC").Offset(p.Offset()).Limit(p.Limit()).Find(&users).Error
	return users, total, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations, "DateJoined").Save(u).Error
}

// Delete removes the user with its notifications and task assignments.
func (r *userRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notification_receiver_id = ?", id).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&taskAssignee{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepo) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&n).Error
	return n > 0, err
}

func (r *userRepo) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	if email == "" {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excludeID).
		Count(&n).Error
	return n > 0, err
}
