package service

import (
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
)

// Publisher pushes realtime events; *ws.Hub implements it.
type Publisher interface {
	Publish(workspaceID uuid.UUID, event ws.Event)
	DisconnectUser(userID uuid.UUID)
}

// Actor identifies who performs an operation, for audit columns and events.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

func (a Actor) audit() string { return a.UserID.String() }

func (a Actor) event() *ws.Actor {
	return &ws.Actor{ID: a.UserID, Name: a.Name, Email: a.Email}
}

type nopPublisher struct{}

func (nopPublisher) Publish(uuid.UUID, ws.Event) {}
func (nopPublisher) DisconnectUser(uuid.UUID)    {}

func orNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
