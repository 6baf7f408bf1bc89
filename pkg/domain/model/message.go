package model

import (
	"sort"

	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

// Attachment is a file attached to a message
type Attachment struct {
	URL         string `json:"url" firestore:"url"`
	Filename    string `json:"filename" firestore:"filename"`
	ContentType string `json:"contentType,omitempty" firestore:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty" firestore:"size,omitempty"`
}

// EmbedField is a titled field inside an embed
type EmbedField struct {
	Name   string `json:"name" firestore:"name"`
	Value  string `json:"value" firestore:"value"`
	Inline bool   `json:"inline,omitempty" firestore:"inline,omitempty"`
}

// EmbedAuthor is the author block of an embed
type EmbedAuthor struct {
	Name    string `json:"name,omitempty" firestore:"name,omitempty"`
	URL     string `json:"url,omitempty" firestore:"url,omitempty"`
	IconURL string `json:"iconUrl,omitempty" firestore:"icon_url,omitempty"`
}

// EmbedFooter is the footer block of an embed
type EmbedFooter struct {
	Text    string `json:"text,omitempty" firestore:"text,omitempty"`
	IconURL string `json:"iconUrl,omitempty" firestore:"icon_url,omitempty"`
}

// Embed is a rich content block attached to a message
type Embed struct {
	Title        string       `json:"title,omitempty" firestore:"title,omitempty"`
	Description  string       `json:"description,omitempty" firestore:"description,omitempty"`
	URL          string       `json:"url,omitempty" firestore:"url,omitempty"`
	Color        int          `json:"color,omitempty" firestore:"color,omitempty"`
	Author       *EmbedAuthor `json:"author,omitempty" firestore:"author,omitempty"`
	Fields       []EmbedField `json:"fields,omitempty" firestore:"fields,omitempty"`
	ImageURL     string       `json:"imageUrl,omitempty" firestore:"image_url,omitempty"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty" firestore:"thumbnail_url,omitempty"`
	Footer       *EmbedFooter `json:"footer,omitempty" firestore:"footer,omitempty"`
}

// Message represents a chat message. Author is an embedded snapshot and may
// be partial.
type Message struct {
	ID          types.MessageID `json:"id" firestore:"id"`
	ChannelID   types.ChannelID `json:"channelId" firestore:"channel_id"`
	GuildID     types.GuildID   `json:"guildId,omitempty" firestore:"guild_id,omitempty"`
	RecipientID types.UserID    `json:"recipientId,omitempty" firestore:"recipient_id,omitempty"`
	Author      *User           `json:"author,omitempty" firestore:"author,omitempty"`
	Content     string          `json:"content" firestore:"content"`
	Timestamp   int64           `json:"timestamp" firestore:"timestamp"`
	Edited      bool            `json:"edited,omitempty" firestore:"edited,omitempty"`
	EditedAt    int64           `json:"editedTimestamp,omitempty" firestore:"edited_at,omitempty"`
	Attachments []Attachment    `json:"attachments,omitempty" firestore:"attachments,omitempty"`
	Embeds      []Embed         `json:"embeds,omitempty" firestore:"embeds,omitempty"`

	// Local-only flags for optimistic sends; never sent to the backend.
	Pending bool `json:"-" firestore:"-"`
	Failed  bool `json:"-" firestore:"-"`
	System  bool `json:"-" firestore:"-"`
}

// AuthorID returns the author's ID, or empty when the snapshot is absent
func (m Message) AuthorID() types.UserID {
	if m.Author == nil {
		return ""
	}
	return m.Author.ID
}

// Merge applies non-zero fields of in on top of m and returns the result.
// Merging is idempotent: re-applying the same payload yields the same value.
func (m Message) Merge(in Message) Message {
	out := m
	if in.ChannelID != "" {
		out.ChannelID = in.ChannelID
	}
	if in.GuildID != "" {
		out.GuildID = in.GuildID
	}
	if in.RecipientID != "" {
		out.RecipientID = in.RecipientID
	}
	if in.Content != "" {
		out.Content = in.Content
	}
	if in.Timestamp != 0 {
		out.Timestamp = in.Timestamp
	}
	if in.Author != nil {
		if out.Author == nil {
			a := *in.Author
			out.Author = &a
		} else {
			merged := out.Author.Merge(*in.Author)
			out.Author = &merged
		}
	}
	if in.Edited {
		out.Edited = true
	}
	if in.EditedAt != 0 {
		out.EditedAt = in.EditedAt
	}
	if len(in.Attachments) > 0 {
		out.Attachments = in.Attachments
	}
	if len(in.Embeds) > 0 {
		out.Embeds = in.Embeds
	}
	return out
}

// SortMessages orders messages ascending by sent timestamp. Delivery order is
// never trusted; callers re-sort after every mutation. The sort is stable so
// equal timestamps keep their relative arrival order.
func SortMessages(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
}
