package models

import (
	"testing"
	"time"
)

func TestNewLeadAssignsIdentity(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	lead := NewLead("Al", "al@x.com", "Pricing?", "web")

	if lead.ID == "" {
		t.Fatal("expected a generated id")
	}
	ts, err := time.Parse(time.RFC3339, lead.Timestamp)
	if err != nil {
		t.Fatalf("timestamp not RFC3339: %v", err)
	}
	if ts.Before(before) || ts.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("timestamp out of range: %s", lead.Timestamp)
	}

	other := NewLead("Al", "al@x.com", "Pricing?", "web")
	if other.ID == lead.ID {
		t.Error("ids must be unique per lead")
	}
}

func TestLedgerRowOrder(t *testing.T) {
	lead := NewLead("Al", "al@x.com", "Pricing?", "landing-page")
	lead.ReplyText = "Thanks!"

	row := lead.LedgerRow()
	want := []string{lead.ID, lead.Timestamp, "Al", "al@x.com", "Pricing?", "Thanks!", "landing-page"}

	if len(row) != 7 {
		t.Fatalf("expected 7 columns, got %d", len(row))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d: expected %q, got %q", i, want[i], row[i])
		}
	}
}

func TestLedgerRowDefaults(t *testing.T) {
	lead := NewLead("", "", "", "")
	row := lead.LedgerRow()

	for i := 2; i <= 5; i++ {
		if row[i] != "" {
			t.Errorf("column %d: expected empty string, got %q", i, row[i])
		}
	}
	if row[6] != "web" {
		t.Errorf("expected source to default to \"web\", got %q", row[6])
	}
}
