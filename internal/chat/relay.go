package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taskroom/taskroom/internal/modules/model"
)

// MessageStore persists chat lines.
type MessageStore interface {
	Create(ctx context.Context, projectID uint, sender, content string) (*model.Message, error)
}

// Outbound is the frame every room member receives for a stored message.
type Outbound struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// inbound accepts the current {sender, content} shape and the older
// {content, username, moment} one; moment is ignored.
type inbound struct {
	Sender   *string `json:"sender"`
	Content  *string `json:"content"`
	Username *string `json:"username"`
}

var (
	errNotJSON         = errors.New("payload must be a JSON object")
	errSenderRequired  = errors.New("sender is required")
	errContentRequired = errors.New("content is required")
	errNotSaved        = errors.New("message could not be saved")
	errNotDelivered    = errors.New("message could not be delivered")
)

func decodeInbound(raw []byte) (sender, content string, err error) {
	var in inbound
	if err := sonic.Unmarshal(raw, &in); err != nil {
		return "", "", errNotJSON
	}
	if in.Sender == nil {
		in.Sender = in.Username
	}
	if in.Sender == nil || *in.Sender == "" {
		return "", "", errSenderRequired
	}
	if in.Content == nil || *in.Content == "" {
		return "", "", errContentRequired
	}
	return *in.Sender, *in.Content, nil
}

const tracerName = "github.com/taskroom/taskroom/internal/chat"

// Relay runs the per-connection protocol: join the room group, persist
// every received line, then fan the stored row out to the group.
type Relay struct {
	layer  Layer
	store  MessageStore
	buffer int
	log    *zap.Logger
	tracer trace.Tracer

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

func NewRelay(layer Layer, store MessageStore, buffer int, log *zap.Logger) *Relay {
	return &Relay{
		layer:   layer,
		store:   store,
		buffer:  buffer,
		log:     log,
		tracer:  otel.Tracer(tracerName),
		clients: make(map[*Client]struct{}),
	}
}

// Serve blocks until the connection ends.
func (r *Relay) Serve(ctx context.Context, conn *websocket.Conn, roomID uint) {
	c := newClient(conn, roomID, r.buffer)
	if !r.track(c) {
		_ = conn.Close()
		return
	}

	r.layer.GroupAdd(c.group, c)
	r.log.Sugar().Infow("chat joined", "conn_id", c.id, "group", c.group)

	go c.writePump()
	r.readPump(ctx, c)
	r.Disconnect(c)
}

// Disconnect removes c from its group and closes it. Idempotent.
func (r *Relay) Disconnect(c *Client) {
	r.layer.GroupDiscard(c.group, c)

	r.mu.Lock()
	_, tracked := r.clients[c]
	delete(r.clients, c)
	r.mu.Unlock()

	c.Close()
	if tracked {
		r.log.Sugar().Infow("chat left", "conn_id", c.id, "group", c.group)
	}
}

// Connected returns the number of open connections.
func (r *Relay) Connected() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Shutdown closes every connection and the channel layer. Later calls are no-ops.
func (r *Relay) Shutdown() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	return r.layer.Close()
}

func (r *Relay) track(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

func (r *Relay) readPump(ctx context.Context, c *Client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				r.log.Sugar().Warnw("chat read failed", "conn_id", c.id, "err", err)
			}
			return
		}
		r.receive(ctx, c, raw)
	}
}

// receive handles one inbound frame. Any failure is reported to the sender
// only; nothing is stored or broadcast.
func (r *Relay) receive(ctx context.Context, c *Client, raw []byte) {
	ctx, span := r.tracer.Start(ctx, "chat.receive", trace.WithAttributes(
		attribute.Int64("chat.room_id", int64(c.roomID)),
		attribute.String("chat.conn_id", c.id),
	))
	defer span.End()

	sender, content, err := decodeInbound(raw)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		r.reject(c, err)
		return
	}

	msg, err := r.persist(ctx, c, sender, content)
	if err != nil {
		r.log.Sugar().Warnw("chat message rejected", "conn_id", c.id, "group", c.group, "err", err)
		span.SetStatus(codes.Error, errNotSaved.Error())
		r.reject(c, errNotSaved)
		return
	}
	span.SetAttributes(attribute.Int64("chat.message_id", int64(msg.ID)))

	if err := r.broadcast(ctx, c, msg); err != nil {
		r.log.Sugar().Errorw("chat group send failed", "group", c.group, "message_id", msg.ID, "err", err)
		span.SetStatus(codes.Error, errNotDelivered.Error())
		r.reject(c, errNotDelivered)
	}
}

func (r *Relay) persist(ctx context.Context, c *Client, sender, content string) (*model.Message, error) {
	ctx, span := r.tracer.Start(ctx, "chat.persist")
	defer span.End()

	msg, err := r.store.Create(ctx, c.roomID, sender, content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return nil, err
	}
	return msg, nil
}

func (r *Relay) broadcast(ctx context.Context, c *Client, msg *model.Message) error {
	ctx, span := r.tracer.Start(ctx, "chat.broadcast", trace.WithAttributes(attribute.String("chat.group", c.group)))
	defer span.End()

	payload, err := sonic.Marshal(Outbound{Message: msg.Content, Username: msg.Sender})
	if err == nil {
		err = r.layer.GroupSend(ctx, c.group, payload)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "group send failed")
	}
	return err
}

func (r *Relay) reject(c *Client, reason error) {
	payload, err := sonic.Marshal(errorFrame{Error: reason.Error()})
	if err != nil {
		return
	}
	c.Deliver(payload)
}
