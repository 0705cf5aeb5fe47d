package responder

import "encoding/json"

// Sentiment is the coarse polarity assigned to one user message.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// UserProfile holds the facts learned about the single user.
type UserProfile struct {
	Name      string   `json:"name,omitempty"`
	Age       *int     `json:"age,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// UnmarshalJSON accepts documents that store interests under "likes" as well.
func (p *UserProfile) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name      string   `json:"name"`
		Age       *int     `json:"age"`
		Interests []string `json:"interests"`
		Likes     []string `json:"likes"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Name = raw.Name
	p.Age = raw.Age
	p.Interests = append(raw.Interests, raw.Likes...)
	if len(p.Interests) == 0 {
		p.Interests = nil
	}
	return nil
}

// DisplayName returns the stored name or fallback when none is known.
func (p *UserProfile) DisplayName(fallback string) string {
	if p == nil || p.Name == "" {
		return fallback
	}
	return p.Name
}

// Reset wipes every learned fact in place.
func (p *UserProfile) Reset() {
	*p = UserProfile{}
}

// TurnRecord is one persisted request/response cycle.
type TurnRecord struct {
	User      string    `json:"user"`
	Bot       string    `json:"bot"`
	Sentiment Sentiment `json:"sentiment"`
	Time      string    `json:"time"`
	SessionID string    `json:"session_id,omitempty"`
}

// HistoryLog is the append-only list of past turns.
type HistoryLog []TurnRecord

// Document names used with a store.
const (
	UserDocument        = "user"
	HistoryDocument     = "history"
	PersonalityDocument = "personality"
)
