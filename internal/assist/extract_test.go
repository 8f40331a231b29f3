package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNoBlock(t *testing.T) {
	display, payload := Extract("  Here are your meetings for the week.  ")
	assert.Equal(t, "Here are your meetings for the week.", display)
	assert.Nil(t, payload)
}

func TestExtractValidBlock(t *testing.T) {
	raw := "Found one upcoming event:\n" +
		"```workdesk-data\n" +
		`{"kind":"events","items":[{"id":1,"title":"<script>x</script>Launch","start_date":"2026-09-01"}]}` +
		"\n```\nLet me know if you need details."

	display, payload := Extract(raw)

	assert.Equal(t, "Found one upcoming event:\n\nLet me know if you need details.", display)
	require.NotNil(t, payload)
	assert.Equal(t, KindEvents, payload.Kind)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "1", payload.Items[0].ID)
	assert.Equal(t, "Launch", payload.Items[0].Title, "tags must be stripped from item fields")
	assert.Equal(t, "2026-09-01", payload.Items[0].StartDate)
}

func TestExtractInvalidJSON(t *testing.T) {
	raw := "Before\n```workdesk-data\n{not json at all\n```\nAfter"
	display, payload := Extract(raw)
	assert.Nil(t, payload)
	assert.NotContains(t, display, "workdesk-data", "block text must be removed even when it fails to parse")
	assert.NotContains(t, display, "not json")
	assert.Contains(t, display, "Before")
	assert.Contains(t, display, "After")
}

func TestExtractUnrecognizedKindDropped(t *testing.T) {
	raw := "```workdesk-data\n" + `{"kind":"invoices","items":[{"id":1}]}` + "\n```"
	display, payload := Extract(raw)
	assert.Nil(t, payload)
	assert.Equal(t, "", display)
}

func TestExtractMissingItemsDropped(t *testing.T) {
	raw := "```workdesk-data\n" + `{"kind":"events"}` + "\n```"
	_, payload := Extract(raw)
	assert.Nil(t, payload)

	raw = "```workdesk-data\n" + `{"kind":"events","items":"nope"}` + "\n```"
	_, payload = Extract(raw)
	assert.Nil(t, payload)
}

func TestExtractLastValidBlockWins(t *testing.T) {
	raw := "```workdesk-data\n" + `{"kind":"events","items":[{"id":1,"title":"First"}]}` + "\n```\n" +
		"middle\n" +
		"```workdesk-data\n" + `{"kind":"tasks","items":[{"id":2,"title":"Second"}]}` + "\n```"

	display, payload := Extract(raw)

	require.NotNil(t, payload)
	assert.Equal(t, KindTasks, payload.Kind)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "Second", payload.Items[0].Title)
	assert.Equal(t, "middle", display)
}

func TestExtractInvalidBlockDoesNotShadowValid(t *testing.T) {
	raw := "```workdesk-data\n" + `{"kind":"events","items":[{"id":"7","title":"Keep"}]}` + "\n```\n" +
		"```workdesk-data\nbroken\n```"

	_, payload := Extract(raw)
	require.NotNil(t, payload)
	assert.Equal(t, KindEvents, payload.Kind)
	assert.Equal(t, "Keep", payload.Items[0].Title)
}

func TestExtractSanitizesSurroundingProse(t *testing.T) {
	display, _ := Extract("<img src=x onerror=alert(1)>All clear")
	assert.Equal(t, "All clear", display)
}

func TestExtractStringAndNumberIDs(t *testing.T) {
	raw := "```workdesk-data\n" +
		`{"kind":"contacts","items":[{"id":"abc-123","name":"Dana"},{"id":42,"name":"Riley"}]}` +
		"\n```"
	_, payload := Extract(raw)
	require.NotNil(t, payload)
	require.Len(t, payload.Items, 2)
	assert.Equal(t, "abc-123", payload.Items[0].ID)
	assert.Equal(t, "Dana", payload.Items[0].Title, "name is accepted as the title field")
	assert.Equal(t, "42", payload.Items[1].ID)
}

func TestExtractUnknownItemFieldsDiscarded(t *testing.T) {
	raw := "```workdesk-data\n" +
		`{"kind":"tasks","items":[{"id":1,"title":"File report","internal_notes":"secret"}]}` +
		"\n```"
	_, payload := Extract(raw)
	require.NotNil(t, payload)
	assert.Equal(t, Item{ID: "1", Title: "File report"}, payload.Items[0])
}
