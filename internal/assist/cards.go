package assist

import (
	"net/url"
	"strings"
	"time"
)

// Card is one clickable summary rendered for a payload item: a resolved
// navigation target plus the visual styling for the item's kind.
type Card struct {
	Kind      Kind   `json:"kind"`
	Title     string `json:"title"`
	Href      string `json:"href"`
	Icon      string `json:"icon"`
	Accent    string `json:"accent"`     // foreground tone
	AccentBg  string `json:"accent_bg"`  // background tone
	DateLabel string `json:"date_label,omitempty"`
	Location  string `json:"location,omitempty"`
	Badge     string `json:"badge,omitempty"`
	BadgeTone string `json:"badge_tone,omitempty"`
}

// kindStyle is the fixed per-kind visual style and link template.
type kindStyle struct {
	icon     string
	accent   string
	accentBg string
	path     string
}

// kindStyles is the closed kind -> style table. Unknown kinds fall back to
// defaultStyle rather than omitting the item.
var kindStyles = map[Kind]kindStyle{
	KindEvents:       {icon: "calendar", accent: "#1D4ED8", accentBg: "#DBEAFE", path: "/events/"},
	KindTasks:        {icon: "check-square", accent: "#047857", accentBg: "#D1FAE5", path: "/tasks/"},
	KindContacts:     {icon: "user", accent: "#7C3AED", accentBg: "#EDE9FE", path: "/contacts/"},
	KindPartnerships: {icon: "handshake", accent: "#B45309", accentBg: "#FEF3C7", path: "/partnerships/"},
	KindLeads:        {icon: "target", accent: "#BE185D", accentBg: "#FCE7F3", path: "/leads/"},
	KindUpdates:      {icon: "megaphone", accent: "#0E7490", accentBg: "#CFFAFE", path: "/updates/"},
}

var defaultStyle = kindStyle{icon: "file", accent: "#374151", accentBg: "#F3F4F6", path: "/search"}

// badgeTones maps status/priority keywords (case-insensitive) to a badge
// tone. Unrecognized values get the neutral tone, never an error.
var badgeTones = map[string]string{
	"urgent":      "danger",
	"high":        "danger",
	"overdue":     "danger",
	"blocked":     "danger",
	"medium":      "warning",
	"pending":     "warning",
	"in progress": "info",
	"active":      "info",
	"open":        "info",
	"low":         "success",
	"done":        "success",
	"completed":   "success",
	"confirmed":   "success",
}

const (
	cardTitleMax = 60
	// neutral tone for unrecognized badge values
	badgeToneDefault = "neutral"
)

// RenderCards produces one card per payload item, or nil when the payload is
// absent or empty. Unknown kinds and unknown badge values degrade to default
// styling; nothing here fails.
func RenderCards(p *Payload) []Card {
	if p == nil || len(p.Items) == 0 {
		return nil
	}

	style, ok := kindStyles[p.Kind]
	if !ok {
		style = defaultStyle
	}

	cards := make([]Card, 0, len(p.Items))
	for _, it := range p.Items {
		title := it.Title
		if title == "" {
			title = it.Description
		}
		c := Card{
			Kind:      p.Kind,
			Title:     truncateLabel(title, cardTitleMax),
			Href:      resolveHref(style, it, title),
			Icon:      style.icon,
			Accent:    style.accent,
			AccentBg:  style.accentBg,
			DateLabel: dateLabel(it),
			Location:  it.Location,
		}
		if badge := badgeValue(it); badge != "" {
			c.Badge = badge
			c.BadgeTone = badgeTone(badge)
		}
		cards = append(cards, c)
	}
	return cards
}

// resolveHref builds the navigation target for an item: a detail link from
// the kind's path template, or a search-style link on the title when the
// identifier is absent.
func resolveHref(style kindStyle, it Item, title string) string {
	if it.HasID() && style.path != defaultStyle.path {
		return style.path + url.PathEscape(it.ID)
	}
	return "/search?q=" + url.QueryEscape(title)
}

// dateLabel formats the item's relevant date fields using a short format,
// preferring a range when start and end are present and differ. Dates that
// do not parse are shown as their (already sanitized) raw text.
func dateLabel(it Item) string {
	start := it.StartDate
	if start == "" {
		start = it.DueDate
	}
	if start == "" {
		return ""
	}
	if it.EndDate != "" && it.EndDate != start {
		return formatShortDate(start) + " – " + formatShortDate(it.EndDate)
	}
	return formatShortDate(start)
}

// dateLayouts are the datetime shapes the backend is known to emit.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func formatShortDate(raw string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return raw
}

// badgeValue picks the badge text: priority wins over status.
func badgeValue(it Item) string {
	if it.Priority != "" {
		return it.Priority
	}
	return it.Status
}

func badgeTone(badge string) string {
	if tone, ok := badgeTones[strings.ToLower(strings.TrimSpace(badge))]; ok {
		return tone
	}
	return badgeToneDefault
}

// truncateLabel caps a label at max runes, flagging the cut with an
// ellipsis marker.
func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
