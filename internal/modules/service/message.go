package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskroom/taskroom/internal/infra/blob"
	"github.com/taskroom/taskroom/internal/infra/queue"
	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"go.uber.org/zap"
)

const EventChatMessage = "chat.message"

// ArchiveStore is the object storage used for chat exports.
type ArchiveStore interface {
	UploadJSON(ctx context.Context, keyPrefix string, data interface{}) (*blob.UploadedMeta, error)
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
}

type ArchiveOutput struct {
	ProjectID uint      `json:"project_id"`
	Count     int       `json:"count"`
	Key       string    `json:"key"`
	SHA256    string    `json:"sha256"`
	SizeB     int64     `json:"size_b"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MessageService interface {
	// Create persists one chat line; the returned row is what gets broadcast.
	Create(ctx context.Context, projectID uint, sender, content string) (*model.Message, error)
	List(ctx context.Context, projectID *uint, p paging.Params) (paging.Result[model.Message], error)
	// Archive exports a room's history and returns a temporary download link.
	Archive(ctx context.Context, projectID uint) (*ArchiveOutput, error)
}

type messageService struct {
	r             repo.MessageRepo
	projects      repo.ProjectRepo
	pub           queue.EventPublisher
	store         ArchiveStore
	presignExpire time.Duration
	log           *zap.Logger
}

// NewMessageService builds the chat message service. store may be nil, in
// which case Archive returns ErrArchiveDisabled.
func NewMessageService(
	r repo.MessageRepo,
	projects repo.ProjectRepo,
	pub queue.EventPublisher,
	store ArchiveStore,
	presignExpire time.Duration,
	log *zap.Logger,
) MessageService {
	return &messageService{
		r:             r,
		projects:      projects,
		pub:           pub,
		store:         store,
		presignExpire: presignExpire,
		log:           log,
	}
}

func (s *messageService) Create(ctx context.Context, projectID uint, sender, content string) (*model.Message, error) {
	sender = strings.TrimSpace(sender)
	switch {
	case sender == "":
		return nil, fieldErr("sender", ErrRequired)
	case utf8.RuneCountInString(sender) > model.SenderMaxLen:
		return nil, fieldErr("sender", ErrTooLong)
	case content == "":
		return nil, fieldErr("content", ErrRequired)
	}

	ok, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fieldErr("message_project", ErrUnknownReference)
	}

	m := &model.Message{MessageProjectID: projectID, Sender: sender, Content: content}
	if err := s.r.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	if err := s.pub.Publish(ctx, EventChatMessage, m); err != nil {
		s.log.Sugar().Warnw("publish chat event failed", "message_id", m.ID, "err", err)
	}
	return m, nil
}

func (s *messageService) List(ctx context.Context, projectID *uint, p paging.Params) (paging.Result[model.Message], error) {
	p = p.Normalize()
	items, total, err := s.r.List(ctx, projectID, p)
	if err != nil {
		return paging.Result[model.Message]{}, err
	}
	return paging.NewResult(items, total, p), nil
}

func (s *messageService) Archive(ctx context.Context, projectID uint) (*ArchiveOutput, error) {
	if s.store == nil {
		return nil, ErrArchiveDisabled
	}
	ok, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	msgs, err := s.r.ListAll(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}

	meta, err := s.store.UploadJSON(ctx, "chat-archives/project-"+strconv.FormatUint(uint64(projectID), 10), msgs)
	if err != nil {
		return nil, fmt.Errorf("upload archive: %w", err)
	}
	url, err := s.store.PresignGet(ctx, meta.Key, s.presignExpire)
	if err != nil {
		return nil, fmt.Errorf("presign archive: %w", err)
	}

	s.log.Sugar().Infow("chat archived", "project_id", projectID, "messages", len(msgs), "key", meta.Key)
	return &ArchiveOutput{
		ProjectID: projectID,
		Count:     len(msgs),
		Key:       meta.Key,
		SHA256:    meta.SHA256,
		SizeB:     meta.SizeB,
		URL:       url,
		ExpiresAt: time.Now().Add(s.presignExpire).UTC(),
	}, nil
}
