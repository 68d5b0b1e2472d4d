package ws

import (
	"go-pos-ws/internal/model"

	"github.com/google/uuid"
)

const (
	EventMembershipUpdate = "membership_update"
	EventStockUpdate      = "stock_update"
)

// Event is the envelope of every realtime message.
type Event struct {
	Type    string                 `json:"type"`
	Action  string                 `json:"action,omitempty"`
	Member  *model.WorkspaceMember `json:"member,omitempty"`
	Product *StockChange           `json:"product,omitempty"`
	User    *Actor                 `json:"user,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// StockChange describes a product whose stock moved.
type StockChange struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	OldStock int       `json:"old_stock"`
	NewStock int       `json:"new_stock"`
}

// Actor is the user that caused an event.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// MembershipUpdated builds the event pushed whenever a member row changes.
func MembershipUpdated(m *model.WorkspaceMember) Event {
	return Event{Type: EventMembershipUpdate, Member: m}
}
