package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/metrics"
	"github.com/shashiranjanraj/kuman/pkg/session"
	"github.com/shashiranjanraj/kuman/pkg/ws"
)

// Chat frame event names.
const (
	EventJoin    = "join"
	EventMessage = "message"
)

// ChatService opens support conversations on the chat host.
type ChatService struct {
	url  string
	sess session.Reader
}

func NewChatService(url string, sess session.Reader) *ChatService {
	return &ChatService{url: url, sess: sess}
}

// Open connects, joins the (userId, role, orderId) room and starts
// collecting the transcript. fromUser is the name outgoing messages carry.
func (s *ChatService) Open(ctx context.Context, join models.JoinRequest, fromUser string) (*Conversation, error) {
	if join.OrderID <= 0 || join.UserID <= 0 {
		return nil, fmt.Errorf("chat: join needs orderId and userId")
	}
	if join.Role != models.RoleRequester && join.Role != models.RoleWalker {
		return nil, fmt.Errorf("chat: unknown role %q", join.Role)
	}

	header := http.Header{}
	if s.sess != nil && s.sess.Token() != "" {
		header.Set("Authorization", "Bearer "+s.sess.Token())
	}
	conn, err := ws.Dial(ctx, s.url, header)
	if err != nil {
		return nil, err
	}
	if err := conn.Emit(EventJoin, join); err != nil {
		conn.Close()
		return nil, err
	}

	c := &Conversation{
		conn:     conn,
		join:     join,
		fromUser: fromUser,
		done:     make(chan struct{}),
	}
	go c.receive(ctx)
	return c, nil
}

// Conversation is one open chat with an append-only transcript.
type Conversation struct {
	conn     *ws.Conn
	join     models.JoinRequest
	fromUser string
	done     chan struct{}

	mu         sync.Mutex
	transcript []models.ChatMessage
	observers  []func(models.ChatMessage)
}

// OnMessage registers fn for every transcript append, inbound or outbound.
func (c *Conversation) OnMessage(fn func(models.ChatMessage)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Send emits a message and appends it locally without waiting for an echo.
func (c *Conversation) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	msg := models.ChatMessage{
		OrderID:    c.join.OrderID,
		Message:    text,
		FromUser:   c.fromUser,
		Role:       c.join.Role,
		TargetRole: models.RoleAdmin,
	}
	if err := c.conn.Emit(EventMessage, msg); err != nil {
		return err
	}
	metrics.RecordChat("out")
	c.append(msg)
	return nil
}

// Transcript returns a copy of every message so far, in arrival order.
func (c *Conversation) Transcript() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatMessage, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Done is closed once the connection has ended and the transcript is final.
func (c *Conversation) Done() <-chan struct{} { return c.done }

// Err reports a background disconnect (ws.ErrDisconnected).
func (c *Conversation) Err() error { return c.conn.Err() }

// Close tears the connection down. The transcript is kept in memory only.
func (c *Conversation) Close() error {
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Conversation) receive(ctx context.Context) {
	defer close(c.done)
	cancelled := ctx.Done()
	for {
		select {
		case env, ok := <-c.conn.Inbound():
			if !ok {
				if err := c.conn.Err(); err != nil {
					logger.WithCtx(ctx).Warn("chat: disconnected", "order_id", c.join.OrderID, "error", err)
				}
				return
			}
			if env.Event != EventMessage {
				continue
			}
			var msg models.ChatMessage
			if err := env.Decode(&msg); err != nil {
				logger.WithCtx(ctx).Warn("chat: bad message frame", "error", err)
				continue
			}
			metrics.RecordChat("in")
			c.append(msg)
		case <-cancelled:
			cancelled = nil
			c.conn.Close()
		}
	}
}

func (c *Conversation) append(msg models.ChatMessage) {
	c.mu.Lock()
	c.transcript = append(c.transcript, msg)
	obs := append([]func(models.ChatMessage){}, c.observers...)
	c.mu.Unlock()

	for _, o := range obs {
		o(msg)
	}
}
