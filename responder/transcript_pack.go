package responder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/chat-o-bot/responder/fileutils"
)

// legacySessionID groups turns recorded before session ids existed.
const legacySessionID = "legacy"

// TranscriptPackOptions controls how markdown transcript shards are created.
type TranscriptPackOptions struct {
	OutDir    string
	MaxBytes  int // default ~100KB
	Overwrite bool

	// BotName labels bot lines; defaults to DefaultBotName.
	BotName string
	// UserName labels user lines; defaults to "You".
	UserName string
}

// SessionTranscript is a run of consecutive turns sharing one session id.
type SessionTranscript struct {
	SessionID string
	Turns     []TurnRecord
}

// TranscriptIndexRecord maps one session to a markdown shard file and anchor.
type TranscriptIndexRecord struct {
	SessionID string `json:"session_id"`
	Started   string `json:"started,omitempty"`
	Ended     string `json:"ended,omitempty"`
	Turns     int    `json:"turns"`

	ShardFile string `json:"shard_file"`
	Anchor    string `json:"anchor"`

	Sentiments map[Sentiment]int `json:"sentiments"`
}

// GroupSessions splits history into consecutive runs of the same session id.
func GroupSessions(history HistoryLog) []SessionTranscript {
	var out []SessionTranscript
	for _, t := range history {
		id := strings.TrimSpace(t.SessionID)
		if id == "" {
			id = legacySessionID
		}
		if n := len(out); n > 0 && out[n-1].SessionID == id {
			out[n-1].Turns = append(out[n-1].Turns, t)
			continue
		}
		out = append(out, SessionTranscript{SessionID: id, Turns: []TurnRecord{t}})
	}
	return out
}

// WriteTranscriptShards writes markdown shard files for history, one section per session.
// Sections are packed sequentially into files of roughly MaxBytes (UTF-8 bytes).
func WriteTranscriptShards(history HistoryLog, opts TranscriptPackOptions) ([]TranscriptIndexRecord, error) {
	if opts.OutDir == "" {
		return nil, errors.New("WriteTranscriptShards: OutDir is empty")
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 100 * 1024
	}
	if opts.BotName == "" {
		opts.BotName = DefaultBotName
	}
	if opts.UserName == "" {
		opts.UserName = userPlaceholder
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("WriteTranscriptShards: mkdir OutDir: %w", err)
	}

	var (
		shardNum     = 1
		curr         strings.Builder
		currBytes    = 0
		currFilename = ""
		index        []TranscriptIndexRecord
	)

	flush := func() error {
		if currBytes == 0 {
			return nil
		}
		outPath := filepath.Join(opts.OutDir, currFilename)
		if !opts.Overwrite && fileutils.FileExists(outPath) {
			return fmt.Errorf("WriteTranscriptShards: shard exists: %s", outPath)
		}
		if err := fileutils.WriteFileAtomicSameDir(outPath, []byte(curr.String()), 0o644); err != nil {
			return fmt.Errorf("WriteTranscriptShards: write shard: %w", err)
		}
		shardNum++
		curr.Reset()
		currBytes = 0
		currFilename = ""
		return nil
	}

	for i, st := range GroupSessions(history) {
		section, anchor := renderSessionMarkdown(st, i+1, opts)
		sectionBytes := len(section)

		if currBytes > 0 && currBytes+sectionBytes > opts.MaxBytes {
			if err := flush(); err != nil {
				return nil, err
			}
		}

		if currBytes == 0 {
			currFilename = transcriptShardName(shardNum)
			header := fmt.Sprintf("# Chat Transcript Shard %04d\n\n", shardNum)
			curr.WriteString(header)
			currBytes += len(header)
		}

		curr.WriteString(section)
		currBytes += sectionBytes

		index = append(index, TranscriptIndexRecord{
			SessionID:  st.SessionID,
			Started:    st.Turns[0].Time,
			Ended:      st.Turns[len(st.Turns)-1].Time,
			Turns:      len(st.Turns),
			ShardFile:  currFilename,
			Anchor:     anchor,
			Sentiments: countSentiments(st.Turns),
		})
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return index, nil
}

func transcriptShardName(n int) string {
	return fmt.Sprintf("transcript_%04d.md", n)
}

func renderSessionMarkdown(st SessionTranscript, ordinal int, opts TranscriptPackOptions) (section string, anchor string) {
	// The ordinal keeps anchors unique when a session id repeats non-consecutively.
	anchor = fmt.Sprintf("session-%d-%s", ordinal, sanitizeAnchor(st.SessionID))

	var b strings.Builder
	fmt.Fprintf(&b, "<a id=\"%s\"></a>\n", anchor)
	title := st.Turns[0].Time
	if title == "" {
		title = st.SessionID
	}
	fmt.Fprintf(&b, "## Session %s\n\n", escapeMarkdownInline(title))
	fmt.Fprintf(&b, "- session_id: `%s`\n", st.SessionID)
	fmt.Fprintf(&b, "- turns: %d\n", len(st.Turns))
	counts := countSentiments(st.Turns)
	fmt.Fprintf(&b, "- sentiment: positive=%d negative=%d neutral=%d\n\n", counts[Positive], counts[Negative], counts[Neutral])

	for _, t := range st.Turns {
		fmt.Fprintf(&b, "**%s**: %s\n\n", opts.UserName, fileutils.SanitizeNewlines(strings.TrimSpace(t.User)))
		fmt.Fprintf(&b, "**%s**: %s\n\n", opts.BotName, fileutils.SanitizeNewlines(strings.TrimSpace(t.Bot)))
	}

	b.WriteString("\n---\n\n")
	return b.String(), anchor
}

func countSentiments(turns []TurnRecord) map[Sentiment]int {
	counts := map[Sentiment]int{Positive: 0, Negative: 0, Neutral: 0}
	for _, t := range turns {
		switch t.Sentiment {
		case Positive, Negative:
			counts[t.Sentiment]++
		default:
			counts[Neutral]++
		}
	}
	return counts
}

func sanitizeAnchor(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "session"
	}
	var out strings.Builder
	out.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			out.WriteRune(r)
		} else {
			out.WriteByte('-')
		}
	}
	return strings.Trim(out.String(), "-")
}

func escapeMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}

// WriteTranscriptIndex writes index records as JSONL.
func WriteTranscriptIndex(path string, records []TranscriptIndexRecord, overwrite bool) error {
	if path == "" {
		return errors.New("WriteTranscriptIndex: path is empty")
	}
	if !overwrite && fileutils.FileExists(path) {
		return fmt.Errorf("WriteTranscriptIndex: file exists: %s", path)
	}

	var b strings.Builder
	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			return err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	// WriteFileAtomicSameDir appends its own trailing newline.
	return fileutils.WriteFileAtomicSameDir(path, []byte(strings.TrimSuffix(b.String(), "\n")), 0o644)
}
