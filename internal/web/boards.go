package web

import (
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/peterkuimelis/roborally/internal/game"
	rrnet "github.com/peterkuimelis/roborally/internal/net"
)

// BoardInfo is a board as listed by the /api/boards endpoint.
type BoardInfo struct {
	Number int `json:"number"`
	rrnet.BoardView
	Spawns []game.Position `json:"spawns"`
}

func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.boardFile)
	if err != nil {
		http.Error(w, "could not read board file", http.StatusInternalServerError)
		return
	}
	df, err := game.DecodeBoardFile(data)
	if err != nil {
		http.Error(w, "could not parse board file", http.StatusInternalServerError)
		return
	}

	boards := make([]BoardInfo, 0, len(df.Boards))
	for i, entry := range df.Boards {
		b, err := entry.Build()
		if err != nil {
			s.logger.Warn("skipping board", zap.String("board", entry.Name), zap.Error(err))
			continue
		}
		boards = append(boards, BoardInfo{
			Number:    i + 1,
			BoardView: rrnet.BuildBoardView(b),
			Spawns:    b.Spawns,
		})
	}
	writeJSON(w, boards)
}
