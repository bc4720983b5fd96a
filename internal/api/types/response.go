// internal/api/types/response.go
package types

import (
	"encoding/json"

	"cashcard-api/internal/domain"
)

// CashCardResponse is the wire form of a cash card. The owner is implied by
// the credentials and never echoed back.
type CashCardResponse struct {
	ID     int64       `json:"id"`
	Amount json.Number `json:"amount"`
}

// NewCashCardResponse renders amount as a bare JSON number.
func NewCashCardResponse(card domain.CashCard) CashCardResponse {
	return CashCardResponse{ID: card.ID, Amount: json.Number(card.Amount.String())}
}

// NewCashCardListResponse converts a page of cards. An empty page renders
// as [] rather than null.
func NewCashCardListResponse(cards []domain.CashCard) []CashCardResponse {
	out := make([]CashCardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, NewCashCardResponse(c))
	}
	return out
}

// ErrorResponse is the body of 400, 429 and 5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
