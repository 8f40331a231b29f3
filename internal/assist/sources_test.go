package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk-backend/internal/models"
)

func TestAdaptSourcesEmpty(t *testing.T) {
	assert.Nil(t, AdaptSources(nil))
	assert.Nil(t, AdaptSources([]models.Source{}))
}

func TestAdaptSourcesPromotesEvents(t *testing.T) {
	sources := []models.Source{
		{ID: "1", Kind: "event", Title: "Kickoff", Metadata: map[string]interface{}{
			"start_date": "2026-09-01", "end_date": "2026-09-02", "location": "HQ",
		}},
		{ID: "2", Kind: "events", Title: "Retro"},
	}
	p := AdaptSources(sources)
	require.NotNil(t, p)
	assert.Equal(t, KindEvents, p.Kind)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "Kickoff", p.Items[0].Title)
	assert.Equal(t, "2026-09-01", p.Items[0].StartDate)
	assert.Equal(t, "2026-09-02", p.Items[0].EndDate)
	assert.Equal(t, "HQ", p.Items[0].Location)
}

func TestAdaptSourcesEventsWinOverTasks(t *testing.T) {
	sources := []models.Source{
		{ID: "1", Kind: "task", Title: "Chase invoice"},
		{ID: "2", Kind: "event", Title: "Kickoff"},
	}
	p := AdaptSources(sources)
	require.NotNil(t, p)
	assert.Equal(t, KindEvents, p.Kind)
	assert.Len(t, p.Items, 1)
}

func TestAdaptSourcesTasksPromoteAlone(t *testing.T) {
	sources := []models.Source{
		{ID: "4", Kind: "tasks", Title: "Chase invoice", Metadata: map[string]interface{}{
			"due_date": "2026-10-01", "priority": "high",
		}},
	}
	p := AdaptSources(sources)
	require.NotNil(t, p)
	assert.Equal(t, KindTasks, p.Kind)
	assert.Equal(t, "2026-10-01", p.Items[0].DueDate)
	assert.Equal(t, "high", p.Items[0].Priority)
}

func TestAdaptSourcesContactsOnlyFallsBack(t *testing.T) {
	sources := []models.Source{
		{ID: "1", Kind: "contact", Title: "Dana Blake"},
		{ID: "2", Kind: "contact", Title: "Riley Chen"},
	}
	assert.Nil(t, AdaptSources(sources), "non-promotable kinds must fall back to the citation list")
}

func TestAdaptSourcesUndefinedIDTreatedAbsent(t *testing.T) {
	sources := []models.Source{{ID: "undefined", Kind: "event", Title: "Mystery"}}
	p := AdaptSources(sources)
	require.NotNil(t, p)
	assert.False(t, p.Items[0].HasID())
}

func TestAdaptSourcesSanitizesFields(t *testing.T) {
	sources := []models.Source{{
		ID: "1", Kind: "event",
		Title:   "<b>Kickoff</b>",
		Snippet: "<script>x</script>notes",
	}}
	p := AdaptSources(sources)
	require.NotNil(t, p)
	assert.Equal(t, "Kickoff", p.Items[0].Title)
	assert.Equal(t, "notes", p.Items[0].Description)
}

func TestRenderCitations(t *testing.T) {
	sources := []models.Source{
		{ID: "c-9", Kind: "contact", Title: "Dana Blake", Snippet: "Acme <b>procurement</b> lead"},
		{Kind: "mystery", Title: "Odd one"},
	}
	cites := RenderCitations(sources)
	require.Len(t, cites, 2)

	assert.Equal(t, "contacts", cites[0].Kind)
	assert.Equal(t, "/contacts/c-9", cites[0].Href)
	assert.Equal(t, "Acme procurement lead", cites[0].Snippet)

	assert.Equal(t, "mystery", cites[1].Kind)
	assert.Equal(t, "/search?q=Odd+one", cites[1].Href)
}
