package service

import (
	"context"
	"fmt"

	"github.com/taskroom/taskroom/internal/infra/queue"
	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"go.uber.org/zap"
)

const EventNotificationCreated = "notification.created"

type NotificationInput struct {
	ProjectID  *uint
	ReceiverID *uint
	Read       *bool
	Type       *model.NotificationType
}

type NotificationService interface {
	Create(ctx context.Context, in NotificationInput) (*model.Notification, error)
	Get(ctx context.Context, id uint) (*model.Notification, error)
	List(ctx context.Context, f repo.NotificationFilter, p paging.Params) (paging.Result[model.Notification], error)
	Update(ctx context.Context, id uint, in NotificationInput) (*model.Notification, error)
	Delete(ctx context.Context, id uint) error
	// NotifyAssigned creates one assignment notification per receiver.
	NotifyAssigned(ctx context.Context, projectID uint, receiverIDs []uint) error
}

type notificationService struct {
	r        repo.NotificationRepo
	projects repo.ProjectRepo
	users    repo.UserRepo
	pub      queue.EventPublisher
	log      *zap.Logger
}

func NewNotificationService(
	r repo.NotificationRepo,
	projects repo.ProjectRepo,
	users repo.UserRepo,
	pub queue.EventPublisher,
	log *zap.Logger,
) NotificationService {
	return &notificationService{r: r, projects: projects, users: users, pub: pub, log: log}
}

func (s *notificationService) Create(ctx context.Context, in NotificationInput) (*model.Notification, error) {
	if in.ProjectID == nil {
		return nil, fieldErr("notification_project", ErrRequired)
	}
	if in.ReceiverID == nil {
		return nil, fieldErr("notification_receiver", ErrRequired)
	}
	n := &model.Notification{NotificationType: model.NotificationAssignment}
	if err := s.apply(ctx, n, in); err != nil {
		return nil, err
	}
	if err := s.r.Create(ctx, n); err != nil {
		return nil, err
	}
	s.publish(ctx, n)
	return n, nil
}

func (s *notificationService) Get(ctx context.Context, id uint) (*model.Notification, error) {
	n, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (s *notificationService) List(ctx context.Context, f repo.NotificationFilter, p paging.Params) (paging.Result[model.Notification], error) {
	p = p.Normalize()
	items, total, err := s.r.List(ctx, f, p)
	if err != nil {
		return paging.Result[model.Notification]{}, err
	}
	return paging.NewResult(items, total, p), nil
}

func (s *notificationService) Update(ctx context.Context, id uint, in NotificationInput) (*model.Notification, error) {
	n, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.apply(ctx, n, in); err != nil {
		return nil, err
	}
	if err := s.r.Update(ctx, n); err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, id uint) error {
	return notFound(s.r.Delete(ctx, id))
}

func (s *notificationService) NotifyAssigned(ctx context.Context, projectID uint, receiverIDs []uint) error {
	if len(receiverIDs) == 0 {
		return nil
	}
	ns := make([]model.Notification, 0, len(receiverIDs))
	for _, uid := range receiverIDs {
		ns = append(ns, model.Notification{
			NotificationProjectID:  projectID,
			NotificationReceiverID: uid,
			NotificationType:       model.NotificationAssignment,
		})
	}
	if err := s.r.CreateBatch(ctx, ns); err != nil {
		return fmt.Errorf("create assignment notifications: %w", err)
	}
	for i := range ns {
		s.publish(ctx, &ns[i])
	}
	return nil
}

// publish is best effort; the notification row is the source of truth.
func (s *notificationService) publish(ctx context.Context, n *model.Notification) {
	if err := s.pub.Publish(ctx, EventNotificationCreated, n); err != nil {
		s.log.Sugar().Warnw("publish notification event failed", "notification_id", n.ID, "err", err)
	}
}

func (s *notificationService) apply(ctx context.Context, n *model.Notification, in NotificationInput) error {
	if in.ProjectID != nil {
		ok, err := s.projects.Exists(ctx, *in.ProjectID)
		if err != nil {
			return err
		}
		if !ok {
			return fieldErr("notification_project", ErrUnknownReference)
		}
		n.NotificationProjectID = *in.ProjectID
	}
	if in.ReceiverID != nil {
		if _, err := s.users.Get(ctx, *in.ReceiverID); err != nil {
			if notFound(err) == ErrNotFound {
				return fieldErr("notification_receiver", ErrUnknownReference)
			}
			return err
		}
		n.NotificationReceiverID = *in.ReceiverID
	}
	if in.Read != nil {
		n.Read = *in.Read
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return fieldErr("notification_type", ErrInvalidValue)
		}
		n.NotificationType = *in.Type
	}
	return nil
}
