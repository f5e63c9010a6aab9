package model

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidAmount = errors.New("model: amount must be a positive number")

type Profile struct {
	UserID   int64
	Username string
	FullName string
	Bio      string
	Skills   []string
	Avatar   string
}

// DisplayName falls back to a synthetic name when the server has none.
func (p Profile) DisplayName() string {
	if strings.TrimSpace(p.Username) != "" {
		return p.Username
	}
	return "User " + strconv.FormatInt(p.UserID, 10)
}

type ProfileUpdate struct {
	FullName string
	Bio      string
	Skills   []string
	Avatar   string
}

// ParseSkills splits a comma separated skills field.
func ParseSkills(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type Wallet struct {
	Currency string
	Balance  string
	Address  string
}

type Transfer struct {
	To      string
	Amount  string
	TxID    string
	Message string
}

func (t Transfer) Validate() error {
	if strings.TrimSpace(t.To) == "" {
		return errors.New("model: transfer recipient is required")
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(t.Amount), 64)
	if err != nil || amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

type Ticket struct {
	ID      int64
	Subject string
	Status  TicketStatus
}

type TicketMessage struct {
	ID       int64
	TicketID int64
	SenderID int64
	Body     string
}

type Dispute struct {
	ID       int64
	TaskID   int64
	Status   string
	OpenedBy string
}
