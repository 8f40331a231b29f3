package assist

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"workdesk-backend/internal/sanitize"
)

// DataBlockMarker is the fence language tag the assistant is prompted to use
// when it embeds a machine-readable result set inside its prose.
const DataBlockMarker = "workdesk-data"

// dataBlockRe matches a fenced region annotated with the marker. (?s) lets
// the body span lines; the inner match is lazy so back-to-back blocks stay
// separate.
var dataBlockRe = regexp.MustCompile("(?s)```" + DataBlockMarker + `\s*(.*?)\s*` + "```")

// Extract scans raw assistant text for fenced data blocks. It returns the
// surrounding prose — sanitized, with every fenced region removed whether or
// not it parsed — and the recovered payload, if any.
//
// Malformed JSON, an unrecognized kind, or a non-list items field all
// degrade to "no structured data": the block is dropped silently and never
// surfaces as an error. When multiple valid blocks are present the last one
// wins.
func Extract(raw string) (string, *Payload) {
	if raw == "" {
		return "", nil
	}

	matches := dataBlockRe.FindAllStringSubmatch(raw, -1)
	display := dataBlockRe.ReplaceAllString(raw, "")
	display = strings.TrimSpace(sanitize.Clean(display))

	var payload *Payload
	for _, m := range matches {
		if p := parseBlock(m[1]); p != nil {
			payload = p
		}
	}
	return display, payload
}

// rawBlock is the shape a fenced block must decode into before any of it is
// trusted. Items must be a JSON list of objects; anything else fails the
// decode and drops the block.
type rawBlock struct {
	Kind  string                   `json:"kind"`
	Items []map[string]interface{} `json:"items"`
}

// parseBlock attempts to build a Payload from one fenced region's inner
// text. Returns nil on any structural problem; the parse error itself is
// never propagated past this boundary.
func parseBlock(inner string) *Payload {
	var blk rawBlock
	if err := json.Unmarshal([]byte(inner), &blk); err != nil {
		log.Printf("[Assist] Dropping malformed data block: %v", err)
		return nil
	}

	kind, ok := NormalizeKind(blk.Kind)
	if !ok {
		log.Printf("[Assist] Dropping data block with unrecognized kind %q", blk.Kind)
		return nil
	}
	if blk.Items == nil {
		log.Printf("[Assist] Dropping data block without a list-valued items field")
		return nil
	}

	items := make([]Item, 0, len(blk.Items))
	for _, m := range blk.Items {
		items = append(items, itemFromMap(m))
	}
	return &Payload{Kind: kind, Items: items}
}
