package assist

import (
	"net/url"

	"workdesk-backend/internal/models"
	"workdesk-backend/internal/sanitize"
)

// AdaptSources repackages a flat citation list into the typed payload shape
// so the card renderer can be reused. Citations are grouped by normalized
// kind; events are promoted over tasks when both groups are non-empty. The
// other kinds are never promoted — a nil return tells the caller to fall
// back to the generic citation list.
func AdaptSources(sources []models.Source) *Payload {
	if len(sources) == 0 {
		return nil
	}

	groups := make(map[Kind][]models.Source)
	for _, src := range sources {
		if kind, ok := NormalizeKind(src.Kind); ok {
			groups[kind] = append(groups[kind], src)
		}
	}

	switch {
	case len(groups[KindEvents]) > 0:
		return promote(KindEvents, groups[KindEvents])
	case len(groups[KindTasks]) > 0:
		return promote(KindTasks, groups[KindTasks])
	default:
		return nil
	}
}

// promote maps one citation group into payload items, pulling the
// kind-specific display fields out of each citation's metadata bag.
func promote(kind Kind, group []models.Source) *Payload {
	items := make([]Item, 0, len(group))
	for _, src := range group {
		it := Item{
			ID:          sourceID(src),
			Title:       sanitize.CleanAndTrim(src.Title),
			Description: sanitize.CleanAndTrim(src.Snippet),
		}
		if src.Metadata != nil {
			it.StartDate = cleanField(src.Metadata, "start_date", "startDate", "date")
			it.EndDate = cleanField(src.Metadata, "end_date", "endDate")
			it.DueDate = cleanField(src.Metadata, "due_date", "dueDate")
			it.Location = cleanField(src.Metadata, "location")
			it.Category = cleanField(src.Metadata, "category")
			it.Status = cleanField(src.Metadata, "status")
			it.Priority = cleanField(src.Metadata, "priority")
		}
		items = append(items, it)
	}
	return &Payload{Kind: kind, Items: items}
}

// sourceID treats the literal placeholder "undefined" as an absent id.
func sourceID(src models.Source) string {
	if src.ID == "" || src.ID == "undefined" {
		return ""
	}
	return sanitize.CleanAndTrim(src.ID)
}

// Citation is the generic fallback rendering of one source when no group is
// promotable to rich cards: title, snippet, a kind badge, and an
// external-link affordance.
type Citation struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	Href    string `json:"href"`
}

// RenderCitations builds the generic citation list. Unrecognized kinds keep
// their sanitized raw tag as the badge.
func RenderCitations(sources []models.Source) []Citation {
	if len(sources) == 0 {
		return nil
	}
	out := make([]Citation, 0, len(sources))
	for _, src := range sources {
		kindLabel := sanitize.CleanAndTrim(src.Kind)
		if kind, ok := NormalizeKind(src.Kind); ok {
			kindLabel = string(kind)
		}
		title := sanitize.CleanAndTrim(src.Title)
		out = append(out, Citation{
			Kind:    kindLabel,
			Title:   title,
			Snippet: sanitize.CleanAndTrim(src.Snippet),
			Href:    citationHref(src, title),
		})
	}
	return out
}

func citationHref(src models.Source, title string) string {
	id := sourceID(src)
	if kind, ok := NormalizeKind(src.Kind); ok && id != "" {
		if style, ok := kindStyles[kind]; ok {
			return style.path + url.PathEscape(id)
		}
	}
	return "/search?q=" + url.QueryEscape(title)
}
