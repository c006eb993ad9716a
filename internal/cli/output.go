package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Match:
		o.printMatch(v)
	case Snapshot:
		o.printSnapshot(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Match response type (matches API)
type Match struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	HostID    string    `json:"host_id"`
	GuestID   string    `json:"guest_id,omitempty"`
	Seed      int32     `json:"seed,omitempty"`
	StartAt   time.Time `json:"start_at,omitzero"`
	WinnerID  string    `json:"winner_id,omitempty"`
	EndReason string    `json:"end_reason,omitempty"`

	DisconnectDeadline map[string]time.Time `json:"disconnect_deadline,omitempty"`
}

// Snapshot response type
type Snapshot struct {
	MatchID string          `json:"matchId"`
	Version uint64          `json:"version"`
	Sides   map[string]Side `json:"sides"`
	TakenAt time.Time       `json:"takenAt"`
}

// Side is one player's half of a snapshot
type Side struct {
	Board          [][]int `json:"board"`
	Score          int     `json:"score"`
	TotalLines     int     `json:"totalLines"`
	PendingGarbage int     `json:"pendingGarbage"`
	Seq            uint64  `json:"seq"`
	GameOver       bool    `json:"gameOver"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printMatch(m Match) {
	fmt.Printf("Match: %s\n", m.ID)
	fmt.Printf("Code: %s\n", m.Code)
	fmt.Printf("Status: %s\n", m.Status)
	fmt.Printf("Host: %s\n", m.HostID)
	if m.GuestID != "" {
		fmt.Printf("Guest: %s\n", m.GuestID)
	}
	if m.Seed != 0 {
		fmt.Printf("Seed: %d\n", m.Seed)
	}
	if !m.StartAt.IsZero() {
		fmt.Printf("Starts: %s\n", m.StartAt.Format(time.RFC3339))
	}
	for pid, deadline := range m.DisconnectDeadline {
		fmt.Printf("Disconnect deadline (%s): %s\n", pid, deadline.Format(time.RFC3339))
	}
	if m.WinnerID != "" {
		fmt.Printf("Winner: %s (%s)\n", m.WinnerID, m.EndReason)
	}
}

func (o *Output) printSnapshot(s Snapshot) {
	fmt.Printf("Snapshot v%d of match %s (taken %s)\n", s.Version, s.MatchID, s.TakenAt.Format(time.RFC3339))
	for pid, side := range s.Sides {
		status := ""
		if side.GameOver {
			status = " [topped out]"
		}
		fmt.Printf("\n%s: score %d, lines %d, seq %d%s\n", pid, side.Score, side.TotalLines, side.Seq, status)
		if side.PendingGarbage > 0 {
			fmt.Printf("Pending garbage: %d\n", side.PendingGarbage)
		}
		o.printBoard(side.Board)
	}
}

func (o *Output) printBoard(board [][]int) {
	if len(board) == 0 {
		return
	}

	cols := len(board[0])

	fmt.Print("+")
	for c := 0; c < cols; c++ {
		fmt.Print("-")
	}
	fmt.Println("+")

	for _, row := range board {
		fmt.Print("|")
		for _, cell := range row {
			if cell == 0 {
				fmt.Print(".")
			} else {
				fmt.Print("#")
			}
		}
		fmt.Println("|")
	}

	fmt.Print("+")
	for c := 0; c < cols; c++ {
		fmt.Print("-")
	}
	fmt.Println("+")
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
