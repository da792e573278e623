package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mineops/assistant/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type     string `json:"type"` // "query"
	Question string `json:"question"`
	Language string `json:"language"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type     string           `json:"type"` // "response" or "error"
	Response *engine.Response `json:"response,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, "invalid message format")
			continue
		}

		if req.Question == "" {
			s.sendWSError(conn, "question is required")
			continue
		}

		switch req.Type {
		case "query", "":
			resp := s.engine.Query(r.Context(), req.Question, req.Language)
			s.sendWS(conn, chatResponse{Type: "response", Response: resp})
		default:
			s.sendWSError(conn, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) sendWS(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, msg string) {
	s.sendWS(conn, chatResponse{Type: "error", Error: msg})
}
