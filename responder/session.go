package responder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/chat-o-bot/responder/fileutils"
	"github.com/theimaginaryfoundation/chat-o-bot/responder/store"
)

const (
	emptyInputReply = "I didn't catch that. Could you say something?"
	userPlaceholder = "You"
)

// SessionOptions wires the collaborators of a Session.
type SessionOptions struct {
	Store      store.DocumentStore
	Classifier *Classifier
	Dispatcher *Dispatcher
	Persona    PersonaConfig
	Logger     *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
	// SessionID defaults to a random UUID.
	SessionID string
}

// Session runs turns for one user: extract facts, classify, dispatch, record, persist.
type Session struct {
	store      store.DocumentStore
	classifier *Classifier
	dispatcher *Dispatcher
	persona    PersonaConfig
	logger     *zap.Logger
	now        func() time.Time
	sessionID  string

	profile UserProfile
	history HistoryLog

	// warn receives user-visible persistence warnings.
	warn io.Writer
}

func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Store == nil {
		return nil, errors.New("NewSession: store is nil")
	}
	s := &Session{
		store:      opts.Store,
		classifier: opts.Classifier,
		dispatcher: opts.Dispatcher,
		persona:    opts.Persona.Normalize(),
		logger:     opts.Logger,
		now:        opts.Now,
		sessionID:  opts.SessionID,
		warn:       io.Discard,
	}
	if s.classifier == nil {
		s.classifier = NewClassifier(ClassifierOptions{Logger: opts.Logger})
	}
	if s.dispatcher == nil {
		s.dispatcher = NewDispatcher(DispatcherOptions{Persona: s.persona})
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sessionID == "" {
		s.sessionID = uuid.NewString()
	}
	return s, nil
}

// Load reads the profile and history documents. Absent or unreadable documents
// leave the empty defaults in place.
func (s *Session) Load(ctx context.Context) {
	profile := UserProfile{}
	if _, err := store.LoadOrDefault(ctx, s.store, UserDocument, &profile); err != nil {
		s.logger.Warn("user document unreadable, starting empty", zap.Error(err))
	}
	history := HistoryLog{}
	if _, err := store.LoadOrDefault(ctx, s.store, HistoryDocument, &history); err != nil {
		s.logger.Warn("history document unreadable, starting empty", zap.Error(err))
	}
	s.profile = profile
	s.history = history
	s.logger.Debug("session loaded",
		zap.String("session_id", s.sessionID),
		zap.Bool("known_user", profile.Name != ""),
		zap.Int("history_turns", len(history)))
}

func (s *Session) Profile() UserProfile { return s.profile }

func (s *Session) History() HistoryLog { return s.history }

func (s *Session) SessionID() string { return s.sessionID }

// ProcessTurn handles one line of input and returns the reply. done reports that the
// line was an exit command and the loop should stop.
func (s *Session) ProcessTurn(ctx context.Context, line string) (reply string, done bool) {
	text := strings.TrimSpace(line)
	sentiment := Neutral

	if text == "" {
		reply = emptyInputReply
	} else {
		changed := Extract(text, &s.profile)
		sentiment = s.classifier.Classify(ctx, text)
		reply = s.dispatcher.Dispatch(text, &s.profile, sentiment, len(s.history))
		s.logger.Debug("turn processed",
			zap.String("input", fileutils.Truncate(fileutils.SanitizeNewlines(text), 80)),
			zap.String("sentiment", string(sentiment)),
			zap.Bool("profile_changed", changed))
	}

	s.history = append(s.history, TurnRecord{
		User:      line,
		Bot:       reply,
		Sentiment: sentiment,
		Time:      formatTimestamp(s.now()),
		SessionID: s.sessionID,
	})
	s.persist(ctx)

	return reply, IsExitCommand(text)
}

func (s *Session) persist(ctx context.Context) {
	if err := s.store.Save(ctx, UserDocument, s.profile); err != nil {
		s.warnSave(UserDocument, err)
	}
	if err := s.store.Save(ctx, HistoryDocument, s.history); err != nil {
		s.warnSave(HistoryDocument, err)
	}
}

func (s *Session) warnSave(doc string, err error) {
	s.logger.Warn("could not save document", zap.String("document", doc), zap.Error(err))
	fmt.Fprintf(s.warn, "[Warning] Could not save %s: %v\n", doc, err)
}

// Welcome is the first bot line of a session.
func (s *Session) Welcome() string {
	if s.profile.Name == "" {
		return "Hello! What's your name?"
	}
	msg := fmt.Sprintf("Welcome back, %s! 😊", s.profile.Name)
	if last, ok := s.lastTurnTime(); ok {
		msg += fmt.Sprintf(" We last chatted %s.", humanize.RelTime(last, s.now(), "ago", "from now"))
	}
	return msg
}

func (s *Session) lastTurnTime() (time.Time, bool) {
	for i := len(s.history) - 1; i >= 0; i-- {
		if t, ok := parseTimestamp(s.history[i].Time); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Run drives the interactive loop until an exit command, EOF, or ctx cancellation.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	// Cancelled on return so the reader goroutine never outlives the loop.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.warn = out
	r := lipgloss.NewRenderer(out)
	botStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	userStyle := r.NewStyle().Foreground(lipgloss.Color("213"))
	say := func(msg string) {
		fmt.Fprintf(out, "%s %s\n", botStyle.Render(s.persona.BotName+":"), msg)
	}

	fmt.Fprintln(out, "🤖 Enhanced Chatbot Started")
	fmt.Fprintf(out, "Type 'help' for commands, 'bye' to exit\n\n")
	say(s.Welcome())

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		fmt.Fprint(out, userStyle.Render(s.profile.DisplayName(userPlaceholder)+":")+" ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			say("Goodbye! 👋")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				say("Goodbye! 👋")
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			line = l
		}

		// A turn started before an interrupt still completes and persists.
		reply, done := s.ProcessTurn(context.WithoutCancel(ctx), line)
		say(reply)
		if done {
			return nil
		}
	}
}
