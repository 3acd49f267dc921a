package components

import (
	"time"

	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/yohamta/donburi"
)

// FeedLine is one kill feed row shown by the HUD until Expires.
type FeedLine struct {
	Text    string
	Expires time.Time
}

// MatchData is the singleton the HUD reads: everything about the match that
// is not an entity.
type MatchData struct {
	LocalID uint64
	Phase   netcomponents.Phase

	Ping       uint64
	Connection string // health monitor state name
	Unstable   bool
	Status     string // transport notice, empty while connected

	Winner         string
	BotsActive     bool
	PlayoutDelayMs int64

	Feed []FeedLine
}

var Match = donburi.NewComponentType[MatchData]()

// PushFeed appends a kill feed line, dropping the oldest beyond limit.
func (m *MatchData) PushFeed(text string, expires time.Time, limit int) {
	m.Feed = append(m.Feed, FeedLine{Text: text, Expires: expires})
	if limit > 0 && len(m.Feed) > limit {
		m.Feed = m.Feed[len(m.Feed)-limit:]
	}
}

// PruneFeed removes expired lines.
func (m *MatchData) PruneFeed(now time.Time) {
	kept := m.Feed[:0]
	for _, l := range m.Feed {
		if now.Before(l.Expires) {
			kept = append(kept, l)
		}
	}
	m.Feed = kept
}
