package model

import "time"

// ChatRequest is a pending directed edge: RequesterID asked RequestedID to chat.
type ChatRequest struct {
	RequesterID int64
	RequestedID int64
}

func (r ChatRequest) Involves(id int64) bool {
	return r.RequesterID == id || r.RequestedID == id
}

func (r ChatRequest) Between(a, b int64) bool {
	return (r.RequesterID == a && r.RequestedID == b) || (r.RequesterID == b && r.RequestedID == a)
}

// Counterpart returns the other party of the request as seen by self.
func (r ChatRequest) Counterpart(self int64) int64 {
	if r.RequesterID == self {
		return r.RequestedID
	}
	return r.RequesterID
}

// Incoming reports whether self is the party that may accept the request.
func (r ChatRequest) Incoming(self int64) bool {
	return r.RequestedID == self
}

type ChatRoom struct {
	ID        int64
	Name      string
	MemberIDs []int64
}

func (r ChatRoom) HasMember(id int64) bool {
	for _, m := range r.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

type Message struct {
	ID       int64
	RoomID   int64
	SenderID int64
	Body     string
	SentAt   time.Time
}

type RelationKind string

const (
	RelationNone      RelationKind = "none"
	RelationRequested RelationKind = "requested"
	RelationAccepted  RelationKind = "accepted"
)

// Relation is the chat state of a user pair: NoRelation, Requested or
// Accepted. The set is closed; no other package implements it.
type Relation interface {
	Kind() RelationKind
	sealed()
}

type NoRelation struct{}

type Requested struct {
	Request ChatRequest
}

type Accepted struct {
	Room ChatRoom
}

func (NoRelation) Kind() RelationKind { return RelationNone }
func (Requested) Kind() RelationKind  { return RelationRequested }
func (Accepted) Kind() RelationKind   { return RelationAccepted }

func (NoRelation) sealed() {}
func (Requested) sealed()  {}
func (Accepted) sealed()   {}

// DeriveRelation reads the pair's state from the server listings. A shared
// room wins over a stale request.
func DeriveRelation(self, other int64, requests []ChatRequest, rooms []ChatRoom) Relation {
	for _, room := range rooms {
		if room.HasMember(self) && room.HasMember(other) {
			return Accepted{Room: room}
		}
	}
	for _, req := range requests {
		if req.Between(self, other) {
			return Requested{Request: req}
		}
	}
	return NoRelation{}
}

func CanRequestChat(rel Relation, self, other int64) bool {
	_, none := rel.(NoRelation)
	return none && self != other
}

func CanAcceptChat(rel Relation, self int64) bool {
	req, ok := rel.(Requested)
	return ok && req.Request.Incoming(self)
}

func CanCancelChat(rel Relation, self int64) bool {
	req, ok := rel.(Requested)
	return ok && req.Request.Involves(self)
}

func CanExitChat(rel Relation, self int64) bool {
	acc, ok := rel.(Accepted)
	return ok && acc.Room.HasMember(self)
}
