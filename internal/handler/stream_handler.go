package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/course-viewer/internal/dto"
	"github.com/noah-isme/course-viewer/internal/models"
	"github.com/noah-isme/course-viewer/internal/service"
	appErrors "github.com/noah-isme/course-viewer/pkg/errors"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4 * 1024
)

type streamService interface {
	courseService
	Subscribe(ctx context.Context) <-chan models.CourseSnapshot
}

// StreamHandler pushes live course snapshots over Server-Sent Events and
// WebSocket. WebSocket clients may also dispatch store intents.
type StreamHandler struct {
	service   streamService
	metrics   *service.MetricsService
	logger    *zap.Logger
	heartbeat time.Duration
	upgrader  websocket.Upgrader
}

// NewStreamHandler constructs a stream handler. An empty origin list accepts any WebSocket origin.
func NewStreamHandler(svc streamService, metrics *service.MetricsService, logger *zap.Logger, heartbeat time.Duration, allowedOrigins []string) *StreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	return &StreamHandler{
		service:   svc,
		metrics:   metrics,
		logger:    logger,
		heartbeat: heartbeat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[strings.TrimRight(r.Header.Get("Origin"), "/")]
				return ok
			},
		},
	}
}

// Events godoc
// @Summary Stream course snapshots (Server-Sent Events)
// @Tags Stream
// @Produce text/event-stream
// @Success 200
// @Router /courses/events [get]
func (h *StreamHandler) Events(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	snapshots := h.service.Subscribe(ctx)
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap, ok := <-snapshots:
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{
				Id:    strconv.FormatUint(snap.Version, 10),
				Event: "snapshot",
				Data:  snap,
			})
			return true
		case <-ticker.C:
			c.Render(-1, sse.Event{Event: "heartbeat", Data: time.Now().UTC().Format(time.RFC3339)})
			return true
		}
	})
}

// streamMessage is the WebSocket frame exchanged in both directions.
type streamMessage struct {
	Type    string                 `json:"type"`
	Action  string                 `json:"action,omitempty"`
	ID      string                 `json:"id,omitempty"`
	Course  *dto.CourseInput       `json:"course,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Changed *bool                  `json:"changed,omitempty"`
	Error   *appErrors.Error       `json:"error,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// WebSocket godoc
// @Summary Stream course snapshots and dispatch intents (WebSocket)
// @Tags Stream
// @Success 101
// @Router /courses/ws [get]
func (h *StreamHandler) WebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	replies := make(chan streamMessage, 8)
	go h.readIntents(ctx, cancel, conn, replies)

	snapshots := h.service.Subscribe(ctx)
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		var msg streamMessage
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			msg = streamMessage{Type: "snapshot", Data: snap, Meta: versionMeta(snap.Version)}
		case msg = <-replies:
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (h *StreamHandler) readIntents(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, replies chan<- streamMessage) {
	defer cancel()

	pongWait := 2 * h.heartbeat
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket closed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		reply := h.dispatch(ctx, raw)
		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (h *StreamHandler) dispatch(ctx context.Context, raw []byte) streamMessage {
	var in streamMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		return errorMessage("", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message"))
	}

	var (
		result *dto.CourseMutationResult
		err    error
	)
	course := dto.CourseInput{}
	if in.Course != nil {
		course = *in.Course
	}

	switch in.Action {
	case "add":
		result, err = h.service.Add(ctx, course)
	case "update":
		result, err = h.service.Update(ctx, in.ID, course)
	case "delete":
		result = h.service.Delete(ctx, in.ID)
	case "select":
		result, err = h.service.Select(ctx, dto.SelectCourseRequest{ID: in.ID})
	case "clear_selection":
		result = h.service.ClearSelection(ctx)
	default:
		err = appErrors.Clone(appErrors.ErrValidation, "unknown action")
	}
	if err != nil {
		return errorMessage(in.Action, err)
	}

	changed := result.Changed
	return streamMessage{Type: "ack", Action: in.Action, Changed: &changed, Meta: versionMeta(result.Snapshot.Version)}
}

func errorMessage(action string, err error) streamMessage {
	return streamMessage{Type: "error", Action: action, Error: appErrors.FromError(err)}
}
