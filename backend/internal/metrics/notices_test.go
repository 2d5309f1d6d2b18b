package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_dashboard/backend/internal/shared"
)

func TestNoticesFallBackToNoticeRecords(t *testing.T) {
	notices := []shared.Notice{
		{Ident: shared.Ident{MongoID: "n1"}, Title: "Exam week", Content: "Starts Monday", PosterName: "Dr. Rao"},
		{Ident: shared.Ident{ID: "n2"}, Title: "Holiday", Message: "Campus closed"},
		{Title: "Fees"},
		{Title: "Library"},
		{Title: "Sports"},
	}

	feed := NormalizeNotices(nil, notices)
	require.NotNil(t, feed.Featured)
	assert.Equal(t, NoticeView{ID: "n1", Title: "Exam week", Message: "Starts Monday", Sender: "Dr. Rao"}, *feed.Featured)
	require.Len(t, feed.Preview, 3)
	assert.Equal(t, "Holiday", feed.Preview[0].Title)
	assert.Equal(t, DefaultSender, feed.Preview[0].Sender)
	assert.Equal(t, "Campus closed", feed.Preview[0].Message)
	assert.Equal(t, "Library", feed.Preview[2].Title)
	assert.Len(t, feed.All, 5)
}

func TestNoticesPreferMessages(t *testing.T) {
	messages := []shared.Message{{Title: "Welcome", Message: "Hi", Sender: ""}}
	notices := []shared.Notice{{Title: "Ignored"}}

	feed := NormalizeNotices(messages, notices)
	require.Len(t, feed.All, 1)
	assert.Equal(t, "Welcome", feed.Featured.Title)
	assert.Empty(t, feed.Featured.Sender, "messages are used verbatim")
	assert.Empty(t, feed.Preview)
}

func TestNoticesEmpty(t *testing.T) {
	feed := NormalizeNotices(nil, nil)
	assert.Nil(t, feed.Featured)
	assert.NotNil(t, feed.Preview)
	assert.NotNil(t, feed.All)
	assert.Empty(t, feed.All)
}
