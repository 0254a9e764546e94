package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"docupy/internal/session"
	"docupy/pkg/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the wire format exchanged with chat clients.
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

// UsageData accompanies every answer so clients can render per-query and
// session usage without a second round trip.
type UsageData struct {
	TotalTokens      int     `json:"total_tokens"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
	SessionTokens    int     `json:"session_tokens"`
	SessionCostUSD   float64 `json:"session_cost_usd"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
}

// WSServer exposes the query engine over a WebSocket. Each connection gets
// its own session, so transcripts and usage totals never leak between
// clients. Queries within one connection are processed one at a time.
type WSServer struct {
	engine *chat.Engine
}

func NewWSServer(engine *chat.Engine) *WSServer {
	return &WSServer{engine: engine}
}

// Run starts the server and blocks.
func Run(addr string, engine *chat.Engine) error {
	s := NewWSServer(engine)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	log.Printf("Starting WebSocket server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *WSServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sess := session.New()
	s.sendMessage(conn, "greeting", session.Greeting)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("Error reading message: %v", err)
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}
		if msg.Type != "query" || msg.Content == "" {
			continue
		}

		s.handleQuery(r.Context(), conn, sess, msg.Content)
	}
}

func (s *WSServer) handleQuery(ctx context.Context, conn *websocket.Conn, sess *session.Session, query string) {
	sess.AppendUser(query)

	result := s.engine.Answer(ctx, query, sess.Transcript())

	sess.AppendAssistant(result.Answer)
	sess.Usage.Record(result)

	totals := sess.Usage.SessionTotals()
	s.send(conn, Message{
		Type:    "answer",
		Content: result.Answer,
		Data: UsageData{
			TotalTokens:      result.TotalTokens,
			TotalCostUSD:     result.TotalCostUSD,
			PromptTokens:     result.PromptTokens,
			CompletionTokens: result.CompletionTokens,
			SessionTokens:    totals.TotalTokens,
			SessionCostUSD:   totals.TotalCostUSD,
		},
	})
}

func (s *WSServer) sendMessage(conn *websocket.Conn, msgType string, content string) {
	s.send(conn, Message{Type: msgType, Content: content})
}

func (s *WSServer) send(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
