// Package assist transforms a single untrusted block of assistant-generated
// text into safe, structured, navigable render content: it strips injected
// markup, recovers the machine-readable payload embedded in the prose,
// renders a constrained markdown dialect, and reconciles free-text citations
// with explicit structured blocks into one card model.
package assist

import (
	"strconv"
	"strings"

	"workdesk-backend/internal/sanitize"
)

// Kind is the closed set of record categories the assistant can reference.
type Kind string

const (
	KindEvents       Kind = "events"
	KindTasks        Kind = "tasks"
	KindContacts     Kind = "contacts"
	KindPartnerships Kind = "partnerships"
	KindLeads        Kind = "leads"
	KindUpdates      Kind = "updates"
)

// kindAliases folds the spellings the backend emits (singular forms plus
// legacy plural forms) to a canonical Kind. Adding a new entity kind is a
// one-place change here plus one row in the style table.
var kindAliases = map[string]Kind{
	"event":        KindEvents,
	"events":       KindEvents,
	"task":         KindTasks,
	"tasks":        KindTasks,
	"contact":      KindContacts,
	"contacts":     KindContacts,
	"partnership":  KindPartnerships,
	"partnerships": KindPartnerships,
	"lead":         KindLeads,
	"leads":        KindLeads,
	"update":       KindUpdates,
	"updates":      KindUpdates,
}

// NormalizeKind maps a raw kind tag to its canonical Kind.
// Returns false for anything outside the closed enumeration.
func NormalizeKind(raw string) (Kind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(raw))]
	return k, ok
}

// Item is one record inside a structured payload. The identifier may arrive
// as a JSON number or string; all display fields are optional and every
// string field is sanitized before it is stored here.
type Item struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Location    string `json:"location,omitempty"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Description string `json:"description,omitempty"`
}

// HasID reports whether the item carries a usable identifier. The literal
// placeholder "undefined" leaks out of the backend and counts as absent.
func (it Item) HasID() bool {
	return it.ID != "" && it.ID != "undefined"
}

// Payload is a typed result set recovered from assistant output: a kind tag
// drawn from the closed enumeration plus an ordered list of items.
type Payload struct {
	Kind  Kind   `json:"kind"`
	Items []Item `json:"items"`
}

// itemFromMap copies the known fields out of a decoded block item,
// sanitizing every string on the way in and discarding everything else.
// A handful of field-name aliases are tolerated because the payload is
// assistant-authored.
func itemFromMap(m map[string]interface{}) Item {
	return Item{
		ID:          idField(m["id"]),
		Title:       cleanField(m, "title", "name"),
		StartDate:   cleanField(m, "start_date", "startDate", "date"),
		EndDate:     cleanField(m, "end_date", "endDate"),
		DueDate:     cleanField(m, "due_date", "dueDate"),
		Location:    cleanField(m, "location"),
		Category:    cleanField(m, "category"),
		Status:      cleanField(m, "status"),
		Priority:    cleanField(m, "priority"),
		Description: cleanField(m, "description"),
	}
}

// cleanField returns the first present key as sanitized, trimmed text.
func cleanField(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return sanitize.CleanAndTrim(s)
			}
		}
	}
	return ""
}

// idField normalizes a number-or-string identifier to its string form.
func idField(v interface{}) string {
	switch id := v.(type) {
	case string:
		return sanitize.CleanAndTrim(id)
	case float64:
		// JSON numbers decode as float64; ids are integral in practice.
		if id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}
