package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/auth"
	"messaging-service/internal/dispatch"
	"messaging-service/internal/observability"
)

const eventRoutingKey = "ws_events.messaging"

// SocketHandler upgrades authenticated HTTP requests to websocket
// connections and feeds their frames into the dispatcher.
type SocketHandler struct {
	dispatcher *dispatch.Dispatcher
	verifier   auth.Verifier
}

// NewSocketHandler constructs a SocketHandler.
func NewSocketHandler(dispatcher *dispatch.Dispatcher, verifier auth.Verifier) *SocketHandler {
	return &SocketHandler{dispatcher: dispatcher, verifier: verifier}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection, registers it, and runs the read loop.
func (h *SocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}

	transport := newTransport(conn)
	h.dispatcher.OnConnect(userID, transport)

	observability.IncWSActive()
	h.publishLifecycleEvent(ctx, "ws_connect", info, "")

	// The request context is canceled as soon as this handler returns, even
	// though the connection is hijacked. The read loop needs a context that
	// lives as long as the socket, with the trace link preserved.
	go h.readLoop(context.WithoutCancel(ctx), userID, transport, conn, info)
}

func (h *SocketHandler) readLoop(ctx context.Context, userID int, transport *wsTransport, conn *websocket.Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		transport.markClosed()
		h.dispatcher.OnDisconnect(userID, transport)
		observability.DecWSActive()
		h.publishLifecycleEvent(ctx, "ws_disconnect", info, closeReason)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.publishLifecycleEvent(ctx, "ws_error", info, closeReason)
			}
			return
		}
		h.dispatcher.OnFrame(ctx, userID, transport, data)
	}
}

func (h *SocketHandler) publishLifecycleEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	_ = observability.PublishEvent(ctx, eventRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func (h *SocketHandler) validateToken(header string) (int, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return h.verifier.VerifyToken(parts[1])
	}
	return 0, auth.ErrInvalidToken
}
