package web

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/peterkuimelis/roborally/internal/game"
	rrnet "github.com/peterkuimelis/roborally/internal/net"
)

// CardInfo is the JSON representation of one card type for the /api/cards endpoint.
type CardInfo struct {
	Type       string `json:"type"`
	Asset      string `json:"asset"`
	Count      int    `json:"count"`
	Priorities []int  `json:"priorities"`
}

// Server is the roborally web API and websocket proxy.
type Server struct {
	boardFile string
	logger    *zap.Logger
	mux       *http.ServeMux
}

// NewServer creates a new web server.
func NewServer(boardFile string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		boardFile: boardFile,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/boards", s.handleBoards)

	// WebSocket proxy
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	// the population is fixed; the shuffle seed does not matter
	deck := game.NewDeck(rand.New(rand.NewSource(1)))
	counts := deck.Composition()

	byType := make(map[game.CardType]*CardInfo)
	for _, c := range deck.Cards() {
		ci, ok := byType[c.Type]
		if !ok {
			ci = &CardInfo{Type: c.Type.String(), Asset: c.Type.AssetName(), Count: counts[c.Type]}
			byType[c.Type] = ci
		}
		ci.Priorities = append(ci.Priorities, c.Priority)
	}

	cards := make([]CardInfo, 0, len(byType))
	for _, ct := range game.AllCardTypes() {
		ci := byType[ct]
		sort.Ints(ci.Priorities)
		cards = append(cards, *ci)
	}
	writeJSON(w, cards)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()

	// Read initial connect message from browser
	_, connectData, err := wsConn.Read(ctx)
	if err != nil {
		s.logger.Warn("websocket read connect", zap.Error(err))
		return
	}

	var connectMsg struct {
		Type string `json:"type"`
		Addr string `json:"addr"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(connectData, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}

	// Open TCP connection to game server
	tcpConn, err := net.Dial("tcp", connectMsg.Addr)
	if err != nil {
		errMsg, _ := json.Marshal(map[string]string{
			"type":   "error",
			"result": fmt.Sprintf("Could not connect to game server at %s: %v", connectMsg.Addr, err),
		})
		wsConn.Write(ctx, websocket.MessageText, errMsg)
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()
	logger := s.logger.With(zap.String("addr", connectMsg.Addr), zap.String("name", connectMsg.Name))

	if err := json.NewEncoder(tcpConn).Encode(rrnet.ClientMessage{Type: "join", Name: connectMsg.Name}); err != nil {
		logger.Warn("tcp write join", zap.Error(err))
		return
	}

	done := make(chan struct{})

	// TCP → WebSocket (server messages to browser)
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if err != io.EOF {
					logger.Warn("tcp read", zap.Error(err))
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				logger.Warn("websocket write", zap.Error(err))
				return
			}
		}
	}()

	// WebSocket → TCP (browser responses to server)
	go func() {
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				return
			}
			data = append(data, '\n')
			if _, err := tcpConn.Write(data); err != nil {
				logger.Warn("tcp write", zap.Error(err))
				return
			}
		}
	}()

	<-done
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
