package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
)

// graphql-transport-ws message types.
const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgPing           = "ping"
	msgPong           = "pong"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
)

var upgrader = websocket.Upgrader{
	Subprotocols: []string{"graphql-transport-ws"},
	CheckOrigin:  func(r *http.Request) bool { return true },
}

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu   sync.Mutex
	subs map[string]context.CancelFunc
}

func (w *wsConn) send(id, typ string, payload interface{}) error {
	msg := wsMessage{ID: id, Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		msg.Payload = raw
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.conn.WriteJSON(msg)
}

// serveSubscriptions speaks the graphql-transport-ws protocol. The
// Authorization header of the upgrade request feeds the same context
// builder as plain HTTP requests.
func (h *Handler) serveSubscriptions(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ws := &wsConn{
		conn: conn,
		subs: make(map[string]context.CancelFunc),
	}
	defer func() {
		ws.mu.Lock()
		for _, cancel := range ws.subs {
			cancel()
		}
		ws.mu.Unlock()
	}()

	authHeader := c.GetHeader("Authorization")

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case msgConnectionInit:
			if err := ws.send("", msgConnectionAck, nil); err != nil {
				return
			}
		case msgPing:
			if err := ws.send("", msgPong, nil); err != nil {
				return
			}
		case msgSubscribe:
			h.startSubscription(c.Request.Context(), ws, authHeader, msg)
		case msgComplete:
			ws.mu.Lock()
			if cancel, ok := ws.subs[msg.ID]; ok {
				cancel()
				delete(ws.subs, msg.ID)
			}
			ws.mu.Unlock()
		}
	}
}

func (h *Handler) startSubscription(parent context.Context, ws *wsConn, authHeader string, msg wsMessage) {
	var req graphqlRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		_ = ws.send(msg.ID, msgError, []gin.H{{"message": "invalid subscribe payload"}})
		return
	}

	ctx, err := h.builder.Build(parent, authHeader)
	if err != nil {
		_ = ws.send(msg.ID, msgError, []gin.H{{"message": err.Error()}})
		return
	}

	subCtx, cancel := context.WithCancel(ctx)
	ws.mu.Lock()
	ws.subs[msg.ID] = cancel
	ws.mu.Unlock()

	results := graphql.Subscribe(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        subCtx,
	})

	go func() {
		defer func() {
			cancel()
			ws.mu.Lock()
			delete(ws.subs, msg.ID)
			ws.mu.Unlock()
		}()

		for result := range results {
			if len(result.Errors) > 0 {
				if err := ws.send(msg.ID, msgError, result.Errors); err != nil {
					return
				}
				continue
			}
			if err := ws.send(msg.ID, msgNext, result); err != nil {
				return
			}
		}
		_ = ws.send(msg.ID, msgComplete, nil)
	}()
}
