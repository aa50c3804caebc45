package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hdtinh57/smartdocqa/internal/llm"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format. Sources scopes the
// conversation to a subset of documents; omitting it searches everything,
// an explicit empty list matches nothing.
type chatRequest struct {
	Query   string   `json:"query"`
	Sources []string `json:"sources,omitempty"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type    string `json:"type"` // "response" or "error"
	Content string `json:"content"`
}

// handleWebSocket runs one chat conversation per connection. Turns are kept
// in order so follow-up questions see earlier answers.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("chat: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	var history []llm.Message

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendChatError(conn, "invalid message format")
			continue
		}
		if req.Query == "" {
			s.sendChatError(conn, "query is required")
			continue
		}

		answer, err := s.qa.Chat(r.Context(), history, req.Query, req.Sources)
		if err != nil {
			s.sendChatError(conn, "answering failed: "+err.Error())
			continue
		}

		history = append(history,
			llm.Message{Role: llm.RoleUser, Content: req.Query},
			llm.Message{Role: llm.RoleAssistant, Content: answer},
		)

		if err := conn.WriteJSON(chatResponse{Type: "response", Content: answer}); err != nil {
			log.Printf("chat: websocket write: %v", err)
			return
		}
	}
}

func (s *Server) sendChatError(conn *websocket.Conn, msg string) {
	if err := conn.WriteJSON(chatResponse{Type: "error", Content: msg}); err != nil {
		log.Printf("chat: websocket write: %v", err)
	}
}
