package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatch(t *testing.T) {
	doc := &Document{
		Type:       TypeProcedure,
		Status:     StatusPublished,
		Process:    "purchasing",
		NormPoints: []string{"7.5", "8.4"},
	}

	assert.True(t, Filter{}.Match(doc))
	assert.True(t, Filter{Type: TypeProcedure, Status: StatusPublished}.Match(doc))
	assert.True(t, Filter{NormPoint: "8.4"}.Match(doc))
	assert.False(t, Filter{NormPoint: "9.1"}.Match(doc))
	assert.False(t, Filter{Process: "sales"}.Match(doc))

	doc.IsArchived = true
	assert.False(t, Filter{}.Match(doc))
	assert.True(t, Filter{IncludeArchived: true}.Match(doc))
}

func TestPaginationNormalize(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, PageSize: DefaultPageSize}, Pagination{}.Normalize())
	assert.Equal(t, Pagination{Page: 3, PageSize: MaxPageSize}, Pagination{Page: 3, PageSize: 500}.Normalize())
}

func TestClearAttachmentKeepsCounter(t *testing.T) {
	doc := Document{FilePath: "k", FileName: "a.pdf", FileSize: 10, PageCount: 2, DownloadURL: "u", DownloadCount: 4}
	doc.ClearAttachment()
	assert.False(t, doc.HasAttachment())
	assert.Empty(t, doc.DownloadURL)
	assert.EqualValues(t, 4, doc.DownloadCount)
}
