package response

import (
	"time"

	"github.com/blockduel/blockduel-go/internal/model"
)

// Match represents a match in API responses
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
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DisconnectDeadline map[string]time.Time `json:"disconnect_deadline,omitempty"`
}

// MatchFromModel converts a model.Match to a response Match
func MatchFromModel(m *model.Match) Match {
	resp := Match{
		ID:        string(m.ID),
		Code:      string(m.Code),
		Status:    string(m.Status),
		HostID:    string(m.HostID),
		GuestID:   string(m.GuestID),
		Seed:      m.Seed,
		StartAt:   m.StartAt,
		WinnerID:  string(m.WinnerID),
		EndReason: string(m.EndReason),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if len(m.DisconnectDeadline) > 0 {
		resp.DisconnectDeadline = make(map[string]time.Time, len(m.DisconnectDeadline))
		for id, deadline := range m.DisconnectDeadline {
			resp.DisconnectDeadline[string(id)] = deadline
		}
	}
	return resp
}
