package metrics

import "portal_dashboard/backend/internal/shared"

// DefaultSender is shown for notices without a poster.
const DefaultSender = "Admin"

// previewSize is how many notices follow the featured one in the preview.
const previewSize = 3

// NoticeView is the display shape shared by messages and notices.
type NoticeView struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// NoticeFeed splits the normalized list for display.
type NoticeFeed struct {
	Featured *NoticeView  `json:"featured"`
	Preview  []NoticeView `json:"preview"`
	All      []NoticeView `json:"all"`
}

// NormalizeNotices uses a non-empty messages feed as is; otherwise it maps
// notices into the same shape.
func NormalizeNotices(messages []shared.Message, notices []shared.Notice) NoticeFeed {
	var all []NoticeView
	if len(messages) > 0 {
		all = make([]NoticeView, 0, len(messages))
		for _, m := range messages {
			all = append(all, NoticeView{
				ID:        m.Key(),
				Title:     m.Title.String(),
				Message:   m.Message.String(),
				Sender:    m.Sender.String(),
				CreatedAt: m.CreatedAt.String(),
			})
		}
	} else {
		all = make([]NoticeView, 0, len(notices))
		for _, n := range notices {
			sender := shared.FirstText(n.PosterName)
			if sender == "" {
				sender = DefaultSender
			}
			all = append(all, NoticeView{
				ID:        n.Key(),
				Title:     n.Title.String(),
				Message:   shared.FirstText(n.Message, n.Content),
				Sender:    sender,
				CreatedAt: n.CreatedAt.String(),
			})
		}
	}

	feed := NoticeFeed{Preview: []NoticeView{}, All: all}
	if len(all) == 0 {
		return feed
	}

	featured := all[0]
	feed.Featured = &featured
	end := 1 + previewSize
	if end > len(all) {
		end = len(all)
	}
	feed.Preview = append(feed.Preview, all[1:end]...)
	return feed
}
