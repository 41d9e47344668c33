// Package domain holds the shared entity types of the news bot.
package domain

import "time"

// Media kinds attached to a post.
const (
	MediaPhoto = "photo"
	MediaVideo = "video"
)

// RawPost is a message captured from a source channel before any processing.
// It is immutable once saved; the pipeline marks it processed but never
// rewrites its content.
type RawPost struct {
	ID              string
	ChannelID       int64
	ChannelUsername string
	MessageID       int64
	Text            string
	MediaType       string // "" when the post carries no media
	MediaData       []byte // downloaded media payload, may be nil
	TGDate          time.Time
	CreatedAt       time.Time
}

// NewsItem is a cleaned, classified post ready for fan-out. A NewsItem is
// uniquely identified by (ChannelID, MessageID).
type NewsItem struct {
	ID              string
	ChannelID       int64
	ChannelUsername string
	MessageID       int64
	Text            string
	Category        string
	MediaType       string
	MediaFileID     string // resolved Telegram file_id, "" when unresolved
	SentCount       int
	CreatedAt       time.Time
}

// HasResolvedMedia reports whether the item carries media deliverable by
// file_id rather than by forwarding the original message.
func (n *NewsItem) HasResolvedMedia() bool {
	return n.MediaType != "" && n.MediaFileID != ""
}

// Subscriber is a bot user. Trial and subscription windows are independent;
// the subscriber is active while either end timestamp is in the future.
type Subscriber struct {
	ID               string
	TelegramID       int64
	Username         string
	Language         string
	CreatedAt        time.Time
	TrialEnd         *time.Time
	SubscriptionPlan string // plan key, "" when never subscribed
	SubscriptionEnd  *time.Time
}

// IsActive reports whether the subscriber may receive news at the given time.
func (s *Subscriber) IsActive(now time.Time) bool {
	if s.TrialEnd != nil && s.TrialEnd.After(now) {
		return true
	}

	return s.SubscriptionEnd != nil && s.SubscriptionEnd.After(now)
}

// HasActiveSubscription reports whether a paid subscription is in effect.
func (s *Subscriber) HasActiveSubscription(now time.Time) bool {
	return s.SubscriptionPlan != "" && s.SubscriptionEnd != nil && s.SubscriptionEnd.After(now)
}

// Channel is a tracked source channel. ID and AccessHash are cached after
// the first username resolution so subsequent history fetches skip the
// resolve round trip.
type Channel struct {
	ID            int64
	Username      string
	Title         string
	AccessHash    int64
	LastMessageID int64
	IsActive      bool
}

// Plan is a paid entitlement tier. CategoryLimit nil means unlimited.
type Plan struct {
	Key           string
	Name          string
	Price         int
	Duration      time.Duration
	CategoryLimit *int
}

// Unlimited reports whether the plan has no category cap.
func (p Plan) Unlimited() bool {
	return p.CategoryLimit == nil
}
