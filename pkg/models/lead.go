package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead represents one inbound contact submission from the website.
type Lead struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Message   string `json:"message"`
	ReplyText string `json:"reply_text"`
	Source    string `json:"source"`
}

// NewLead assigns the id and timestamp at intake, before any downstream
// stage sees the lead.
func NewLead(name, contact, message, source string) *Lead {
	return &Lead{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Name:      name,
		Contact:   contact,
		Message:   message,
		Source:    source,
	}
}

// LedgerRow flattens the lead into the 7-column sheet row. Column order is
// the wire contract with the spreadsheet: id, timestamp, name, contact,
// message, reply, source. A missing source defaults to "web".
func (l *Lead) LedgerRow() []string {
	source := l.Source
	if source == "" {
		source = "web"
	}
	return []string{
		l.ID,
		l.Timestamp,
		l.Name,
		l.Contact,
		l.Message,
		l.ReplyText,
		source,
	}
}
