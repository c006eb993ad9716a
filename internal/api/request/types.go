// Package request defines the JSON request bodies accepted by the API.
package request

// JoinMatchRequest is the body for POST /api/v1/matches/join
type JoinMatchRequest struct {
	Code string `json:"code"`
}

// FinishMatchRequest is the body for POST /api/v1/matches/{id}/finish
type FinishMatchRequest struct {
	WinnerID string `json:"winnerId"`
	Reason   string `json:"reason"`
}
