package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/peterkuimelis/roborally/internal/game"
	"github.com/peterkuimelis/roborally/internal/log"
)

// NetworkController implements game.PlayerController over a TCP connection.
type NetworkController struct {
	conn   net.Conn
	enc    *json.Encoder
	dec    *json.Decoder
	player int // seat this controller drives
	mu     sync.Mutex
}

// NewNetworkController creates a new controller for the given connection.
func NewNetworkController(conn net.Conn, player int) *NetworkController {
	return &NetworkController{
		conn:   conn,
		enc:    json.NewEncoder(conn),
		dec:    json.NewDecoder(conn),
		player: player,
	}
}

// BuildStateView creates a StateView from the perspective of the given seat.
func BuildStateView(state *game.GameState, seat int) *StateView {
	sv := &StateView{
		You:   seat,
		Round: state.Round,
		Phase: state.Phase.String(),
		Board: BuildBoardView(state.Board),
	}
	for _, p := range state.Players {
		sv.Players = append(sv.Players, BuildPlayerView(p))
	}

	if me, err := state.Player(seat); err == nil {
		sv.Status = me.Status()
		for i, c := range me.Hand {
			if c != nil {
				sv.Hand = append(sv.Hand, CardView{
					Index:    i,
					Type:     c.Type.String(),
					Priority: c.Priority,
					Asset:    c.Type.AssetName(),
				})
			}
		}
	}
	return sv
}

// BuildPlayerView creates the public view of one robot.
func BuildPlayerView(p *game.Player) PlayerView {
	return PlayerView{
		Seat:        p.ID,
		Name:        p.Name,
		Color:       string(p.Color),
		X:           p.Position.X,
		Y:           p.Position.Y,
		Facing:      p.Facing().String(),
		Life:        p.Life,
		Damage:      p.Damage,
		Flags:       p.FlagsHeld(),
		PoweredDown: p.PoweredDown,
		Eliminated:  p.Eliminated,
	}
}

// BuildBoardView lists the terrain of every tile inside the board bounds.
func BuildBoardView(b *game.Board) BoardView {
	bv := BoardView{Name: b.Name, Width: b.Width, Height: b.Height}
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			pos := game.Position{X: x, Y: y}
			tv := TileView{X: x, Y: y}
			tv.Wall, _ = b.TerrainAt(game.LayerWalls, pos)
			tv.Mover, _ = b.TerrainAt(game.LayerMovers, pos)
			tv.Event, _ = b.TerrainAt(game.LayerEvents, pos)
			if tv.Wall != "" || tv.Mover != "" || tv.Event != "" {
				bv.Tiles = append(bv.Tiles, tv)
			}
		}
	}
	return bv
}

// NewEventView converts a game event for the wire.
func NewEventView(event log.GameEvent) *EventView {
	return &EventView{
		Round:    event.Round,
		Phase:    event.Phase,
		Register: event.Register,
		Player:   event.Player,
		Type:     event.Type.String(),
		Card:     event.Card,
		Details:  event.Details,
	}
}

// send sends a server message to the client. Must be called with mu held.
func (nc *NetworkController) send(msg ServerMessage) error {
	return nc.enc.Encode(msg)
}

// recv reads a client message. Must be called with mu held.
func (nc *NetworkController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := nc.dec.Decode(&msg)
	return msg, err
}

// ChooseProgram implements game.PlayerController.
func (nc *NetworkController) ChooseProgram(ctx context.Context, state *game.GameState, player int) ([]int, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	msg := ServerMessage{
		Type:   "choose_program",
		Prompt: fmt.Sprintf("Choose %d cards for your registers", game.ProgramSize),
		State:  BuildStateView(state, player),
	}
	if err := nc.send(msg); err != nil {
		return nil, fmt.Errorf("send choose_program: %w", err)
	}

	resp, err := nc.recv()
	if err != nil {
		return nil, fmt.Errorf("recv program: %w", err)
	}
	// the game falls back to the first available cards if these are unusable
	return resp.Indices, nil
}

// ChoosePowerDown implements game.PlayerController.
func (nc *NetworkController) ChoosePowerDown(ctx context.Context, state *game.GameState, player int) (bool, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	msg := ServerMessage{
		Type:   "choose_power_down",
		Prompt: "Power down your robot next round?",
		State:  BuildStateView(state, player),
	}
	if err := nc.send(msg); err != nil {
		return false, fmt.Errorf("send choose_power_down: %w", err)
	}

	resp, err := nc.recv()
	if err != nil {
		return false, fmt.Errorf("recv power_down: %w", err)
	}
	return resp.Answer, nil
}

// SendWelcome tells a freshly joined client which seat it plays.
func (nc *NetworkController) SendWelcome() error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: "welcome", Seat: nc.player})
}

// SendGameOver sends a game_over message to the client.
func (nc *NetworkController) SendGameOver(winner int, result string) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: "game_over", Winner: winner, Result: result})
}

// Notify implements game.PlayerController.
func (nc *NetworkController) Notify(ctx context.Context, event log.GameEvent) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: "notify", Event: NewEventView(event)})
}
