package net

// Message types for the JSON protocol over TCP.

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "welcome"
	Seat int `json:"seat,omitempty"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "choose_program" and "choose_power_down"
	State  *StateView `json:"state,omitempty"`
	Prompt string     `json:"prompt,omitempty"`

	// For "game_over"
	Winner int    `json:"winner,omitempty"`
	Result string `json:"result,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Round    int    `json:"round"`
	Phase    string `json:"phase"`
	Register int    `json:"register"`
	Player   int    `json:"player"`
	Type     string `json:"type"`
	Card     string `json:"card,omitempty"`
	Details  string `json:"details"`
}

// CardView is one hand slot.
type CardView struct {
	Index    int    `json:"index"`
	Type     string `json:"type"`
	Priority int    `json:"priority"`
	Asset    string `json:"asset"`
}

// StateView is the game state from one seat's perspective. Only the viewer's
// hand is visible.
type StateView struct {
	You     int          `json:"you"`
	Round   int          `json:"round"`
	Phase   string       `json:"phase"`
	Board   BoardView    `json:"board"`
	Players []PlayerView `json:"players"`
	Hand    []CardView   `json:"hand,omitempty"`
	Status  string       `json:"status"`
}

// PlayerView is one robot as everybody sees it.
type PlayerView struct {
	Seat        int    `json:"seat"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Facing      string `json:"facing"`
	Life        int    `json:"life"`
	Damage      int    `json:"damage"`
	Flags       int    `json:"flags"`
	PoweredDown bool   `json:"powered_down,omitempty"`
	Eliminated  bool   `json:"eliminated,omitempty"`
}

// BoardView lists every non-floor tile of the board.
type BoardView struct {
	Name   string     `json:"name"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Tiles  []TileView `json:"tiles,omitempty"`
}

// TileView holds the type tag of each layer present on a tile.
type TileView struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Wall  string `json:"wall,omitempty"`
	Mover string `json:"mover,omitempty"`
	Event string `json:"event,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "program": hand slots in register order
	Indices []int `json:"indices,omitempty"`

	// For "power_down"
	Answer bool `json:"answer,omitempty"`

	// For "join" (initial handshake)
	Name string `json:"name,omitempty"`
}
