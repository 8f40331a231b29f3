package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk-backend/internal/models"
)

func TestRenderProseOnly(t *testing.T) {
	res := Render("Nothing scheduled today.", nil)
	require.Len(t, res.Nodes, 1)
	assert.Empty(t, res.Cards)
	assert.Empty(t, res.Citations)
}

func TestRenderEmbeddedBlockWinsOverSources(t *testing.T) {
	content := "Here you go:\n```workdesk-data\n" +
		`{"kind":"events","items":[{"id":1,"title":"Launch"}]}` + "\n```"
	sources := []models.Source{{ID: "9", Kind: "task", Title: "Unrelated"}}

	res := Render(content, sources)

	require.Len(t, res.Cards, 1)
	assert.Equal(t, KindEvents, res.Cards[0].Kind)
	assert.Empty(t, res.Citations)
}

func TestRenderSourcesAdapted(t *testing.T) {
	res := Render("Two matching events.", []models.Source{
		{ID: "1", Kind: "event", Title: "Kickoff"},
		{ID: "2", Kind: "event", Title: "Retro"},
	})
	assert.Len(t, res.Cards, 2)
	assert.Empty(t, res.Citations)
}

func TestRenderCitationFallback(t *testing.T) {
	res := Render("One matching contact.", []models.Source{
		{ID: "c-1", Kind: "contact", Title: "Dana Blake"},
	})
	assert.Empty(t, res.Cards)
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "Dana Blake", res.Citations[0].Title)
}

func TestPlainTextStripsDataBlockAndStyling(t *testing.T) {
	content := "## Today\n\nYou have **one** event:\n```workdesk-data\n" +
		`{"kind":"events","items":[{"id":1,"title":"Launch"}]}` + "\n```\n- Launch at `10:00`"

	got := PlainText(content)

	assert.NotContains(t, got, "workdesk-data")
	assert.NotContains(t, got, "{")
	assert.NotContains(t, got, "**")
	assert.Contains(t, got, "Today")
	assert.Contains(t, got, "You have one event:")
	assert.Contains(t, got, "- Launch at 10:00")
}

func TestPlainTextNumbersOrderedLists(t *testing.T) {
	got := PlainText("Next steps:\n1. Email Dana\n2. Book the room")
	assert.Contains(t, got, "1. Email Dana")
	assert.Contains(t, got, "2. Book the room")
}

func TestRenderNeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{
		"",
		"```workdesk-data\n```",
		"```workdesk-data\nnull\n```",
		"<div><script>while(1){}</script>",
		"* \n1. \n# ",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Render(in, nil) })
	}
}
