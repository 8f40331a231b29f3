package assist

import (
	"fmt"
	"strings"

	"workdesk-backend/internal/models"
)

// RenderResult is the full display model for one assistant message: the
// prose as block nodes, plus either rich entity cards or the generic
// citation fallback.
type RenderResult struct {
	Nodes     []Node     `json:"nodes"`
	Cards     []Card     `json:"cards,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

// Render is the pure render function exposed to the surrounding UI. It
// takes raw message content and the optional citation list that arrived
// with it, and returns display nodes plus zero or more entity cards with
// resolvable navigation targets.
//
// An explicit structured block embedded in the content wins over the
// citation list; when only citations are present the adapter decides
// between rich cards and the generic citation list. Render never fails on
// malformed input — every recoverable problem degrades to plain text or
// default styling inside the components it composes.
func Render(content string, sources []models.Source) RenderResult {
	display, payload := Extract(content)
	result := RenderResult{Nodes: RenderMarkdown(display)}

	if payload == nil && len(sources) > 0 {
		payload = AdaptSources(sources)
		if payload == nil {
			result.Citations = RenderCitations(sources)
			return result
		}
	}
	result.Cards = RenderCards(payload)
	return result
}

// PlainText flattens an assistant reply to plain text for surfaces that
// cannot draw display nodes, such as a chat message posted back to Slack.
// The embedded structured block is stripped and inline styling is reduced
// to its bare text; lists keep their markers.
func PlainText(content string) string {
	display, _ := Extract(content)

	var b strings.Builder
	for _, n := range RenderMarkdown(display) {
		switch n.Type {
		case NodeSpacer:
			b.WriteString("\n")
		case NodeList:
			for i, item := range n.Items {
				if n.Ordered {
					fmt.Fprintf(&b, "%d. %s\n", i+1, flattenSpans(item))
				} else {
					b.WriteString("- " + flattenSpans(item) + "\n")
				}
			}
		default:
			b.WriteString(flattenSpans(n.Spans) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func flattenSpans(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
