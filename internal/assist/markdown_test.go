package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainText(spans []Span) string {
	var out string
	for _, s := range spans {
		out += s.Text
	}
	return out
}

func TestRenderMarkdownHeadings(t *testing.T) {
	nodes := RenderMarkdown("# Week ahead\n## Monday\n### Standup")
	require.Len(t, nodes, 3)
	for i, want := range []int{1, 2, 3} {
		assert.Equal(t, NodeHeading, nodes[i].Type)
		assert.Equal(t, want, nodes[i].Level)
	}
	assert.Equal(t, "Week ahead", plainText(nodes[0].Spans))
}

func TestRenderMarkdownInlineSpans(t *testing.T) {
	nodes := RenderMarkdown("**bold** and *italic* and `code`")
	require.Len(t, nodes, 1)
	spans := nodes[0].Spans

	// three styled spans in source order with literal connective text between
	require.Len(t, spans, 5)
	assert.Equal(t, Span{Style: SpanBold, Text: "bold"}, spans[0])
	assert.Equal(t, Span{Style: SpanText, Text: " and "}, spans[1])
	assert.Equal(t, Span{Style: SpanItalic, Text: "italic"}, spans[2])
	assert.Equal(t, Span{Style: SpanText, Text: " and "}, spans[3])
	assert.Equal(t, Span{Style: SpanCode, Text: "code"}, spans[4])
}

func TestRenderMarkdownListFlushing(t *testing.T) {
	nodes := RenderMarkdown("- a\n- b\n\nc")
	require.Len(t, nodes, 3)

	assert.Equal(t, NodeList, nodes[0].Type)
	assert.False(t, nodes[0].Ordered)
	require.Len(t, nodes[0].Items, 2)
	assert.Equal(t, "a", plainText(nodes[0].Items[0]))
	assert.Equal(t, "b", plainText(nodes[0].Items[1]))

	assert.Equal(t, NodeSpacer, nodes[1].Type)

	assert.Equal(t, NodeParagraph, nodes[2].Type)
	assert.Equal(t, "c", plainText(nodes[2].Spans))
}

func TestRenderMarkdownOrderedList(t *testing.T) {
	nodes := RenderMarkdown("1. first\n2. second\n10. tenth")
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeList, nodes[0].Type)
	assert.True(t, nodes[0].Ordered)
	assert.Len(t, nodes[0].Items, 3)
}

func TestRenderMarkdownMixedListTypesSplit(t *testing.T) {
	nodes := RenderMarkdown("- bullet\n1. numbered")
	require.Len(t, nodes, 2)
	assert.False(t, nodes[0].Ordered)
	assert.True(t, nodes[1].Ordered)
}

func TestRenderMarkdownBulletMarkers(t *testing.T) {
	nodes := RenderMarkdown("- dash\n• dot\n* star")
	require.Len(t, nodes, 1)
	assert.Len(t, nodes[0].Items, 3)
}

func TestRenderMarkdownHeadingFlushesList(t *testing.T) {
	nodes := RenderMarkdown("- a\n# heading")
	require.Len(t, nodes, 2)
	assert.Equal(t, NodeList, nodes[0].Type)
	assert.Equal(t, NodeHeading, nodes[1].Type)
}

func TestRenderMarkdownTrailingBlankLineNoSpacer(t *testing.T) {
	nodes := RenderMarkdown("para\n")
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeParagraph, nodes[0].Type)
}

func TestRenderMarkdownSanitizesBeforeSpans(t *testing.T) {
	nodes := RenderMarkdown("**<script>alert(1)</script>bold**")
	require.Len(t, nodes, 1)
	require.NotEmpty(t, nodes[0].Spans)
	assert.Equal(t, Span{Style: SpanBold, Text: "bold"}, nodes[0].Spans[0])
}

func TestRenderMarkdownNoMatchesDegradeToLiteral(t *testing.T) {
	line := "unterminated **bold and a stray ` tick"
	nodes := RenderMarkdown(line)
	require.Len(t, nodes, 1)
	assert.Equal(t, line, plainText(nodes[0].Spans))
}

func TestRenderMarkdownFourPlusHashesIsParagraph(t *testing.T) {
	nodes := RenderMarkdown("#### too deep")
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeParagraph, nodes[0].Type)
}

func TestRenderMarkdownEmptyInput(t *testing.T) {
	assert.Empty(t, RenderMarkdown(""))
}
