package assist

import (
	"regexp"
	"strings"

	"workdesk-backend/internal/sanitize"
)

// NodeType identifies one block-level display node.
type NodeType string

const (
	NodeHeading   NodeType = "heading"
	NodeParagraph NodeType = "paragraph"
	NodeList      NodeType = "list"
	NodeSpacer    NodeType = "spacer"
)

// SpanStyle identifies one inline span style.
type SpanStyle string

const (
	SpanText   SpanStyle = "text"
	SpanBold   SpanStyle = "bold"
	SpanItalic SpanStyle = "italic"
	SpanCode   SpanStyle = "code"
)

// Span is a styled run of inline text.
type Span struct {
	Style SpanStyle `json:"style"`
	Text  string    `json:"text"`
}

// Node is one block of rendered display content. Level is set for headings
// (1-3); Spans for headings and paragraphs; Items and Ordered for lists.
type Node struct {
	Type    NodeType `json:"type"`
	Level   int      `json:"level,omitempty"`
	Spans   []Span   `json:"spans,omitempty"`
	Ordered bool     `json:"ordered,omitempty"`
	Items   [][]Span `json:"items,omitempty"`
}

var (
	headingRe = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)
	bulletRe  = regexp.MustCompile(`^[-•*]\s+(.*)$`)
	orderedRe = regexp.MustCompile(`^\d+\.\s+(.*)$`)
)

// RenderMarkdown converts plain prose into a sequence of display nodes. It
// processes the text line by line, keeping at most one pending list and
// flushing it on any non-list line, blank line, or end of input. Malformed
// input never fails: anything that matches no construct renders as a
// literal paragraph.
func RenderMarkdown(text string) []Node {
	lines := strings.Split(text, "\n")
	nodes := make([]Node, 0, len(lines))

	var pending *Node
	flush := func() {
		if pending != nil {
			nodes = append(nodes, *pending)
			pending = nil
		}
	}

	for i, line := range lines {
		// The whole line is sanitized before any inline scanning so
		// injected markup cannot survive inside a bold or code span.
		line = strings.TrimSpace(sanitize.Clean(line))

		switch {
		case line == "":
			flush()
			if i < len(lines)-1 && len(nodes) > 0 {
				nodes = append(nodes, Node{Type: NodeSpacer})
			}

		case headingRe.MatchString(line):
			flush()
			m := headingRe.FindStringSubmatch(line)
			nodes = append(nodes, Node{
				Type:  NodeHeading,
				Level: len(m[1]),
				Spans: inlineSpans(m[2]),
			})

		case bulletRe.MatchString(line):
			item := inlineSpans(bulletRe.FindStringSubmatch(line)[1])
			if pending == nil || pending.Ordered {
				flush()
				pending = &Node{Type: NodeList, Ordered: false}
			}
			pending.Items = append(pending.Items, item)

		case orderedRe.MatchString(line):
			item := inlineSpans(orderedRe.FindStringSubmatch(line)[1])
			if pending == nil || !pending.Ordered {
				flush()
				pending = &Node{Type: NodeList, Ordered: true}
			}
			pending.Items = append(pending.Items, item)

		default:
			flush()
			nodes = append(nodes, Node{Type: NodeParagraph, Spans: inlineSpans(line)})
		}
	}
	flush()
	return nodes
}

// inlineMatch locates one styled span candidate within a line.
type inlineMatch struct {
	style      SpanStyle
	start, end int // bounds of the whole match, delimiters included
	inner      string
}

var (
	boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)
	codeRe = regexp.MustCompile("`([^`]+)`")
	// italicRe candidates are filtered for adjacency to another '*' below.
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
)

// inlineSpans resolves bold, italic, and inline-code spans by repeatedly
// taking the earliest-starting match, emitting the literal text before it,
// then the styled span, and continuing on the remainder. A line with no
// matches renders as one plain text span.
func inlineSpans(line string) []Span {
	var spans []Span
	rest := line
	for rest != "" {
		m := earliestInline(rest)
		if m == nil {
			spans = append(spans, Span{Style: SpanText, Text: rest})
			break
		}
		if m.start > 0 {
			spans = append(spans, Span{Style: SpanText, Text: rest[:m.start]})
		}
		spans = append(spans, Span{Style: m.style, Text: m.inner})
		rest = rest[m.end:]
	}
	if spans == nil {
		spans = []Span{{Style: SpanText, Text: ""}}
	}
	return spans
}

// earliestInline returns the earliest-starting inline candidate, or nil.
// On a tie, bold is checked before italic so "**x**" is never read as an
// italic star pair.
func earliestInline(s string) *inlineMatch {
	var best *inlineMatch
	consider := func(m *inlineMatch) {
		if m != nil && (best == nil || m.start < best.start) {
			best = m
		}
	}
	consider(findBold(s))
	consider(findItalic(s))
	consider(findCode(s))
	return best
}

func findBold(s string) *inlineMatch {
	loc := boldRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil
	}
	return &inlineMatch{style: SpanBold, start: loc[0], end: loc[1], inner: s[loc[2]:loc[3]]}
}

func findCode(s string) *inlineMatch {
	loc := codeRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil
	}
	return &inlineMatch{style: SpanCode, start: loc[0], end: loc[1], inner: s[loc[2]:loc[3]]}
}

// findItalic finds the first single-star pair not adjacent to another star,
// so the delimiters of "**bold**" never read as italics.
func findItalic(s string) *inlineMatch {
	for _, loc := range italicRe.FindAllStringSubmatchIndex(s, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && s[start-1] == '*' {
			continue
		}
		if end < len(s) && s[end] == '*' {
			continue
		}
		return &inlineMatch{style: SpanItalic, start: start, end: end, inner: s[loc[2]:loc[3]]}
	}
	return nil
}
