package googledocs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	docsapi "google.golang.org/api/docs/v1"
)

func TestExtractDocumentID(t *testing.T) {
	t.Parallel()

	t.Run("path form", func(t *testing.T) {
		t.Parallel()
		id, err := ExtractDocumentID("https://docs.google.com/document/d/1AbC-d_9/edit#heading=h.1")
		require.NoError(t, err)
		assert.Equal(t, "1AbC-d_9", id)
	})

	t.Run("query form", func(t *testing.T) {
		t.Parallel()
		id, err := ExtractDocumentID("https://docs.google.com/open?id=xyz123")
		require.NoError(t, err)
		assert.Equal(t, "xyz123", id)
	})

	t.Run("no id anywhere", func(t *testing.T) {
		t.Parallel()
		_, err := ExtractDocumentID("https://docs.google.com/spreadsheets/view")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("unparsable url", func(t *testing.T) {
		t.Parallel()
		_, err := ExtractDocumentID("://not a url")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})
}

func TestSanitizeTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Q3_Planning_Notes", sanitizeTitle("Q3 Planning Notes"))
	assert.Equal(t, "report.v2", sanitizeTitle("report.v2"))
	assert.Equal(t, "a_b", sanitizeTitle("  a / b  "))
	assert.Equal(t, "untitled", sanitizeTitle("???"))
}

func TestDocumentText(t *testing.T) {
	t.Parallel()

	doc := &docsapi.Document{
		Body: &docsapi.Body{
			Content: []*docsapi.StructuralElement{
				{Paragraph: &docsapi.Paragraph{
					Elements: []*docsapi.ParagraphElement{
						{TextRun: &docsapi.TextRun{Content: "Hello "}},
						{TextRun: &docsapi.TextRun{Content: "world\n"}},
					},
				}},
				{SectionBreak: &docsapi.SectionBreak{}},
				{Paragraph: &docsapi.Paragraph{
					Elements: []*docsapi.ParagraphElement{
						{TextRun: &docsapi.TextRun{Content: "second paragraph"}},
					},
				}},
			},
		},
	}
	assert.Equal(t, "Hello world\nsecond paragraph", documentText(doc))

	assert.Empty(t, documentText(&docsapi.Document{}))
}
