package net

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"golang.org/x/term"

	"github.com/peterkuimelis/roborally/internal/game"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn       net.Conn
	playerName string
	seat       int
}

// Connect connects to a server, sends the player's name, and runs the REPL.
func Connect(ctx context.Context, addr string, name string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(ClientMessage{Type: "join", Name: name}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Println("Connected! Waiting for game to start...")

	client := &Client{conn: conn, playerName: name}
	return client.RunREPL(ctx)
}

// RunREPL reads server messages and handles them interactively.
func (c *Client) RunREPL(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)
	reader := bufio.NewReader(os.Stdin)

	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case "welcome":
			c.seat = msg.Seat
			fmt.Printf("You are seat %d\n", msg.Seat+1)

		case "notify":
			c.renderEvent(msg.Event)

		case "choose_program":
			c.renderState(msg.State)
			fmt.Printf("\n%s\n", msg.Prompt)
			indices, err := c.readProgram(reader, msg.State)
			if err != nil {
				return err
			}
			if err := enc.Encode(ClientMessage{Type: "program", Indices: indices}); err != nil {
				return fmt.Errorf("send program: %w", err)
			}

		case "choose_power_down":
			fmt.Printf("\n%s (y/n): ", msg.Prompt)
			answer, err := c.readYesNo(reader)
			if err != nil {
				return err
			}
			if err := enc.Encode(ClientMessage{Type: "power_down", Answer: answer}); err != nil {
				return fmt.Errorf("send power_down: %w", err)
			}

		case "game_over":
			fmt.Println()
			fmt.Println("═══════════════════════════════════")
			fmt.Println("          GAME OVER")
			fmt.Println("═══════════════════════════════════")
			fmt.Println(msg.Result)
			fmt.Println("═══════════════════════════════════")
			return nil
		}
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	// Format like the TextLogger
	phase := ev.Phase
	for len(phase) < 12 {
		phase += " "
	}
	reg := "  "
	if ev.Register >= 0 {
		reg = fmt.Sprintf("R%d", ev.Register+1)
	}
	fmt.Printf("Rd%-3d %s %s| %s\n", ev.Round, phase, reg, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	width, height := terminalSize()

	fmt.Println()
	fmt.Printf("Round %d | %s | %s\n", sv.Round, sv.Phase, sv.Board.Name)
	fmt.Print(renderBoard(sv, (width-2)/2, height-16))

	for _, p := range sv.Players {
		line := fmt.Sprintf("  %s %-10s (%d,%d) facing %-5s  life %d  damage %d  flags %d",
			robotGlyph(p), p.Name, p.X, p.Y, p.Facing, p.Life, p.Damage, p.Flags)
		if p.Eliminated {
			line += "  [out]"
		} else if p.PoweredDown {
			line += "  [powered down]"
		}
		fmt.Println(line)
	}
	fmt.Println(sv.Status)

	if len(sv.Hand) > 0 {
		fmt.Printf("\nHand: ")
		for i, cv := range sv.Hand {
			fmt.Printf("[%d] %s(%d)  ", i+1, cv.Type, cv.Priority)
		}
		fmt.Println()
	}
}

func terminalSize() (width, height int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return width, height
}

var robotStyles = map[string]color.Style{
	"red":   {color.FgRed, color.OpBold},
	"green": {color.FgGreen, color.OpBold},
	"blue":  {color.FgBlue, color.OpBold},
	"pink":  {color.FgMagenta, color.OpBold},
}

var (
	styleFloor = color.Style{color.FgGray}
	styleHole  = color.Style{color.FgRed}
	styleFlag  = color.Style{color.FgYellow, color.OpBold}
	styleBelt  = color.Style{color.FgCyan}
)

var facingArrows = map[string]string{"North": "^", "East": ">", "South": "v", "West": "<"}

func robotGlyph(p PlayerView) string {
	glyph := facingArrows[p.Facing]
	if glyph == "" {
		glyph = "R"
	}
	if style, ok := robotStyles[p.Color]; ok {
		return style.Sprint(glyph)
	}
	return glyph
}

// tileGlyph picks one character for a tile; events win over belts, belts over walls.
func tileGlyph(t TileView) string {
	switch {
	case t.Event == "Hole":
		return styleHole.Sprint("O")
	case strings.HasPrefix(t.Event, "Flag"):
		return styleFlag.Sprint(strings.TrimPrefix(t.Event, "Flag"))
	case t.Event == "RotateLeft":
		return "L"
	case t.Event == "RotateRight":
		return "R"
	case t.Mover != "":
		arrow := "~"
		for dir, a := range map[string]string{"North": "↑", "East": "→", "South": "↓", "West": "←"} {
			if strings.HasSuffix(t.Mover, dir) {
				arrow = a
			}
		}
		if strings.HasPrefix(t.Mover, "Express") {
			return styleBelt.Sprint(arrow)
		}
		return arrow
	case t.Wall != "":
		return "#"
	}
	return styleFloor.Sprint(".")
}

// renderBoard draws at most cols x rows tiles, centred on the viewer's robot
// when the board does not fit. North is up.
func renderBoard(sv *StateView, cols, rows int) string {
	b := sv.Board
	if cols < 1 || cols > b.Width {
		cols = b.Width
	}
	if rows < 1 || rows > b.Height {
		rows = b.Height
	}

	var cx, cy int
	for _, p := range sv.Players {
		if p.Seat == sv.You {
			cx, cy = p.X, p.Y
		}
	}
	x0 := clamp(cx-cols/2, 0, b.Width-cols)
	y0 := clamp(cy-rows/2, 0, b.Height-rows)

	tiles := make(map[[2]int]TileView, len(b.Tiles))
	for _, t := range b.Tiles {
		tiles[[2]int{t.X, t.Y}] = t
	}
	robots := make(map[[2]int]PlayerView)
	for _, p := range sv.Players {
		if !p.Eliminated {
			robots[[2]int{p.X, p.Y}] = p
		}
	}

	var sb strings.Builder
	for y := y0 + rows - 1; y >= y0; y-- {
		for x := x0; x < x0+cols; x++ {
			key := [2]int{x, y}
			if p, ok := robots[key]; ok {
				sb.WriteString(robotGlyph(p))
			} else {
				sb.WriteString(tileGlyph(tiles[key]))
			}
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// readProgram reads ProgramSize distinct hand numbers and returns their slots.
// It gives up once input runs out.
func (c *Client) readProgram(reader *bufio.Reader, sv *StateView) ([]int, error) {
	if sv == nil || len(sv.Hand) == 0 {
		return nil, nil
	}
	want := game.ProgramSize
	if len(sv.Hand) < want {
		want = len(sv.Hand)
	}
	for {
		fmt.Print("> ")
		line, readErr := reader.ReadString('\n')
		slots, err := parseProgram(line, sv.Hand, want)
		if err == nil {
			return slots, nil
		}
		if readErr != nil {
			return nil, fmt.Errorf("read program: %w", readErr)
		}
		fmt.Println(err)
	}
}

// parseProgram turns "3 1 5 2 9" into hand slots, rejecting repeats.
func parseProgram(line string, hand []CardView, want int) ([]int, error) {
	parts := strings.Fields(line)
	if len(parts) != want {
		return nil, fmt.Errorf("enter %d numbers separated by spaces", want)
	}
	seen := make(map[int]bool)
	var slots []int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > len(hand) {
			return nil, fmt.Errorf("each number must be between 1 and %d", len(hand))
		}
		if seen[n] {
			return nil, fmt.Errorf("card %d chosen twice", n)
		}
		seen[n] = true
		slots = append(slots, hand[n-1].Index)
	}
	return slots, nil
}

// readYesNo treats an empty line as no; running out of input is an error.
func (c *Client) readYesNo(reader *bufio.Reader) (bool, error) {
	for {
		line, readErr := reader.ReadString('\n')
		switch strings.TrimSpace(strings.ToLower(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "":
			if readErr == nil {
				return false, nil
			}
		}
		if readErr != nil {
			return false, fmt.Errorf("read answer: %w", readErr)
		}
		fmt.Print("Enter y or n: ")
	}
}
