package responder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NamePlaceholder stands in for the user's name in replies when none is known.
const NamePlaceholder = "friend"

var (
	exitWords    = map[string]bool{"bye": true, "goodbye": true, "exit": true, "quit": true}
	clearWords   = map[string]bool{"clear": true, "reset": true}
	helpWords    = map[string]bool{"help": true, "commands": true}
	greetPattern = regexp.MustCompile(`\b(hi|hello|hey)\b`)
)

// DefaultFallbackTemplates is the generic follow-up pool. "{name}" is substituted.
var DefaultFallbackTemplates = []string{
	"That's interesting, {name}. Can you tell me more?",
	"I see, {name}. What do you think about that?",
	"Thanks for sharing, {name}. How does that make you feel?",
	"Hmm, that sounds important, {name}. Could you explain more?",
	"I'm curious, {name}. Tell me more!",
}

const helpReply = "💡 Commands: stats, clear, help, bye\nOtherwise, just chat with me!"

// IsExitCommand reports whether text is one of the farewell commands.
func IsExitCommand(text string) bool {
	return exitWords[strings.ToLower(strings.TrimSpace(text))]
}

// Rand is the randomness the fallback rule needs. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Rand    Rand
	Persona PersonaConfig

	// AcknowledgeLikes enables the case-sensitive "I like" side effect.
	AcknowledgeLikes bool
}

// Dispatcher selects a reply with ordered rules; the first match wins.
type Dispatcher struct {
	rand             Rand
	persona          PersonaConfig
	fallback         []string
	acknowledgeLikes bool
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	persona := opts.Persona.Normalize()
	fallback := DefaultFallbackTemplates
	if len(persona.CasualTemplates) > 0 {
		fallback = persona.CasualTemplates
	}
	r := opts.Rand
	if r == nil {
		r = firstRand{}
	}
	return &Dispatcher{
		rand:             r,
		persona:          persona,
		fallback:         fallback,
		acknowledgeLikes: opts.AcknowledgeLikes,
	}
}

// Dispatch returns the reply for text. turnCount is the number of turns already in the
// history. The clear rule wipes p in place.
func (d *Dispatcher) Dispatch(text string, p *UserProfile, sentiment Sentiment, turnCount int) string {
	if p == nil {
		p = &UserProfile{}
	}
	reply := d.reply(text, p, sentiment, turnCount)
	if d.acknowledgeLikes {
		if i := strings.Index(text, "I like"); i >= 0 {
			if like := strings.TrimSpace(text[i+len("I like"):]); like != "" {
				p.Interests = append(p.Interests, like)
				reply += fmt.Sprintf(" I'll remember that you like %s.", like)
			}
		}
	}
	return reply
}

func (d *Dispatcher) reply(text string, p *UserProfile, sentiment Sentiment, turnCount int) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	name := p.DisplayName(NamePlaceholder)

	switch {
	case exitWords[lower]:
		return fmt.Sprintf("Goodbye %s! Take care 👋", name)
	case lower == "stats":
		return statsReply(p, turnCount)
	case clearWords[lower]:
		p.Reset()
		return "🔄 Memory cleared! Let's start fresh. What's your name?"
	case helpWords[lower]:
		return helpReply
	case greetPattern.MatchString(lower):
		if p.Name != "" {
			return fmt.Sprintf("Hello %s! How are you doing today?", name)
		}
		return "Hello! 😊 What's your name?"
	case strings.Contains(lower, "who are you") || strings.Contains(lower, "your name"):
		return fmt.Sprintf("I'm %s, your friendly chatbot, %s! I love conversations.", d.persona.BotName, name)
	case strings.Contains(lower, "how are you"):
		return fmt.Sprintf("I'm doing great, %s! How about you?", name)
	case sentiment == Positive:
		return fmt.Sprintf("That's wonderful, %s! 😄", name)
	case sentiment == Negative:
		return fmt.Sprintf("I'm sorry to hear that, %s. 😔", name)
	}

	tmpl := d.fallback[d.rand.IntN(len(d.fallback))]
	return strings.ReplaceAll(tmpl, "{name}", name)
}

func statsReply(p *UserProfile, turnCount int) string {
	name := p.DisplayName("Unknown")
	age := "Not given"
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}
	interests := strings.Join(p.Interests, ", ")
	if interests == "" {
		interests = "None"
	}
	return fmt.Sprintf("📊 Stats:\nName: %s\nAge: %s\nMessages: %d\nInterests: %s", name, age, turnCount, interests)
}

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }
