package http

import (
	"context"
	"time"

	"consultancy-portal/internal/access"
	authhttp "consultancy-portal/internal/auth/adapter/http"
	authModel "consultancy-portal/internal/auth/domain/model"
	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/shared/logger"
	"consultancy-portal/internal/shared/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	principalLocal = "principal"
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	writeWait      = 10 * time.Second
)

// WebSocketMessage is a frame sent to profile stream clients.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (h *HTTPHandler) registerWebSocketRoutes(router fiber.Router, auth *authhttp.AuthMiddleware, policy *access.Policy) {
	router.Use(h.ws.Path, auth.OptionalAuth(), policy.Require(access.OpGet, access.Fixed("profile")), func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		principal, ok := authhttp.PrincipalFrom(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		c.Locals(principalLocal, principal)
		return c.Next()
	})
	router.Get(h.ws.Path, websocket.New(h.handleProfileStream))
}

// handleProfileStream sends the caller's profile on connect and again after
// every update until the client disconnects.
func (h *HTTPHandler) handleProfileStream(conn *websocket.Conn) {
	principal, ok := conn.Locals(principalLocal).(authModel.Principal)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(utils.WithUserID(context.Background(), principal.ID))
	defer cancel()

	connID := uuid.NewString()
	log := h.Log.WithContext(ctx).WithFields(map[string]interface{}{"conn_id": connID})
	log.Info("profile stream opened")
	defer log.Info("profile stream closed")

	out := make(chan WebSocketMessage, h.ws.SendBuffer)
	unsubscribe := h.ProfileUC.Subscribe(principal.ID, func(s model.Student) {
		select {
		case out <- WebSocketMessage{Type: "profile", Data: s}:
		case <-ctx.Done():
		default:
			log.Warn("profile stream send buffer full, dropping update")
		}
	})
	defer unsubscribe()

	student, err := h.ProfileUC.Resolve(ctx, model.Student{
		ID:      principal.ID,
		Name:    principal.Name,
		Email:   principal.Email,
		Picture: principal.Picture,
	})
	if err != nil {
		log.Errorf("resolve profile failed: %v", err)
		_ = conn.WriteJSON(WebSocketMessage{Type: "error", Data: fiber.Map{"error": "profile_unavailable", "message": "Failed to load profile"}})
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(ctx, cancel, conn, out)
	}()
	select {
	case out <- WebSocketMessage{Type: "profile", Data: *student}:
	case <-ctx.Done():
	}

	h.readPump(conn, log)
	cancel()
	<-done
}

// readPump discards client frames and returns when the connection drops.
func (h *HTTPHandler) readPump(conn *websocket.Conn, log logger.Logger) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Errorf("profile stream read failed: %v", err)
			}
			return
		}
	}
}

// writePump is the only writer on conn once the stream is running.
func (h *HTTPHandler) writePump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out <-chan WebSocketMessage) {
	defer cancel()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
