package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"periodic-table-service/internal/app"
	"periodic-table-service/internal/surface"
)

// ControllerFactory builds the controller owned by one connection.
type ControllerFactory func(s app.Surface) (*app.Controller, error)

// WSHandler hosts one Controller per websocket connection. The connection's
// surface state is streamed to the browser as snapshot and patch messages.
type WSHandler struct {
	doc           surface.Document
	newController ControllerFactory
	log           *zap.Logger
	upgrader      websocket.Upgrader
}

func NewWSHandler(doc surface.Document, newController ControllerFactory, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		doc:           doc,
		newController: newController,
		log:           log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type clickPayload struct {
	Tile string `json:"tile"`
}

type commandPayload struct {
	Name string `json:"name"`
}

type keyPayload struct {
	Key  string `json:"key"`
	Ctrl bool   `json:"ctrl"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Commands accepted from the page toolbar.
const (
	CommandToggleQuiz = "toggle-quiz"
	CommandShowInfo   = "show-info"
	CommandReset      = "reset"
)

// ServeWS upgrades the request and runs the controller until the client leaves.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("conn", uuid.NewString()))
	state := surface.NewState(h.doc)
	ctrl, err := h.newController(state)
	if err != nil {
		log.Error("controller init failed", zap.Error(err))
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer ctrl.Close()
	log.Info("client connected", zap.Int("elements", len(ctrl.Elements())))

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		if err := conn.WriteJSON(outboundMessage[any]{Type: "snapshot", Payload: state.Snapshot()}); err != nil {
			log.Debug("ws write error", zap.Error(err))
			return
		}
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug("ws write error", zap.Error(err))
					return
				}
			case <-state.Changes():
				patches := state.Flush()
				if len(patches) == 0 {
					continue
				}
				if err := conn.WriteJSON(outboundMessage[any]{Type: "patch", Payload: patches}); err != nil {
					log.Debug("ws write error", zap.Error(err))
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg string) {
		select {
		case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}:
		case <-writerDone:
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "click":
			var payload clickPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply("invalid click payload")
				continue
			}
			ctrl.Click(payload.Tile)
		case "command":
			var payload commandPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply("invalid command payload")
				continue
			}
			switch payload.Name {
			case CommandToggleQuiz:
				ctrl.ToggleMode()
			case CommandShowInfo:
				ctrl.ShowInfo()
			case CommandReset:
				ctrl.Reset()
			default:
				reply("unsupported command")
			}
		case "key":
			var payload keyPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply("invalid key payload")
				continue
			}
			ctrl.HandleKey(payload.Key, app.Modifiers{Ctrl: payload.Ctrl})
		default:
			reply("unsupported message type")
		}
	}

	close(closeSignals)
	<-writerDone
	score := ctrl.State().Score
	log.Info("client disconnected", zap.Int("correct", score.Correct), zap.Int("wrong", score.Wrong))
}
