package responder

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theimaginaryfoundation/chat-o-bot/responder/fileutils"
)

func TestGroupSessions_ConsecutiveRuns(t *testing.T) {
	t.Parallel()

	groups := GroupSessions(HistoryLog{
		{User: "a", Time: "2026-01-01 10:00:00"},
		{User: "b", SessionID: "s1"},
		{User: "c", SessionID: "s1"},
		{User: "d", SessionID: "s2"},
		{User: "e", SessionID: "s1"},
	})
	if len(groups) != 4 {
		t.Fatalf("len(groups)=%d", len(groups))
	}
	wantIDs := []string{"legacy", "s1", "s2", "s1"}
	wantTurns := []int{1, 2, 1, 1}
	for i, g := range groups {
		if g.SessionID != wantIDs[i] || len(g.Turns) != wantTurns[i] {
			t.Fatalf("groups[%d]=%s/%d want %s/%d", i, g.SessionID, len(g.Turns), wantIDs[i], wantTurns[i])
		}
	}
	if GroupSessions(nil) != nil {
		t.Fatalf("expected nil for empty history")
	}
}

func TestWriteTranscriptShards_SingleShard(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	index, err := WriteTranscriptShards(HistoryLog{
		{User: "hi", Bot: "Hello! 😊 What's your name?", Sentiment: Neutral, Time: "2026-01-01 10:00:00", SessionID: "abc"},
		{User: "I love it", Bot: "That's wonderful, friend! 😄", Sentiment: Positive, Time: "2026-01-01 10:00:05", SessionID: "abc"},
	}, TranscriptPackOptions{OutDir: outDir, BotName: "Nova"})
	if err != nil {
		t.Fatalf("WriteTranscriptShards: %v", err)
	}
	if len(index) != 1 {
		t.Fatalf("len(index)=%d", len(index))
	}
	rec := index[0]
	if rec.ShardFile != "transcript_0001.md" || rec.Anchor != "session-1-abc" || rec.Turns != 2 {
		t.Fatalf("record=%+v", rec)
	}
	if rec.Started != "2026-01-01 10:00:00" || rec.Ended != "2026-01-01 10:00:05" {
		t.Fatalf("Started=%q Ended=%q", rec.Started, rec.Ended)
	}
	if rec.Sentiments[Positive] != 1 || rec.Sentiments[Neutral] != 1 || rec.Sentiments[Negative] != 0 {
		t.Fatalf("Sentiments=%v", rec.Sentiments)
	}

	b, err := os.ReadFile(filepath.Join(outDir, rec.ShardFile))
	if err != nil {
		t.Fatalf("read shard: %v", err)
	}
	shard := string(b)
	for _, want := range []string{
		"# Chat Transcript Shard 0001",
		`<a id="session-1-abc"></a>`,
		"- sentiment: positive=1 negative=0 neutral=1",
		"**You**: I love it",
		"**Nova**: That's wonderful, friend! 😄",
	} {
		if !strings.Contains(shard, want) {
			t.Fatalf("shard missing %q:\n%s", want, shard)
		}
	}
}

func TestWriteTranscriptShards_SplitsByMaxBytes(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	long := repeat("x", 300)
	history := HistoryLog{
		{User: long, Bot: "ok", SessionID: "s1", Time: "2026-01-01 10:00:00"},
		{User: long, Bot: "ok", SessionID: "s2", Time: "2026-01-02 10:00:00"},
		{User: long, Bot: "ok", SessionID: "s3", Time: "2026-01-03 10:00:00"},
	}
	index, err := WriteTranscriptShards(history, TranscriptPackOptions{OutDir: outDir, MaxBytes: 500})
	if err != nil {
		t.Fatalf("WriteTranscriptShards: %v", err)
	}
	if len(index) != 3 {
		t.Fatalf("len(index)=%d", len(index))
	}
	for i, want := range []string{"transcript_0001.md", "transcript_0002.md", "transcript_0003.md"} {
		if index[i].ShardFile != want {
			t.Fatalf("index[%d].ShardFile=%q want %q", i, index[i].ShardFile, want)
		}
		if !fileutils.FileExists(filepath.Join(outDir, want)) {
			t.Fatalf("missing shard %s", want)
		}
	}

	// A second run without Overwrite refuses to clobber.
	if _, err := WriteTranscriptShards(history, TranscriptPackOptions{OutDir: outDir, MaxBytes: 500}); err == nil {
		t.Fatalf("expected error for existing shard")
	}
	if _, err := WriteTranscriptShards(history, TranscriptPackOptions{OutDir: outDir, MaxBytes: 500, Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestWriteTranscriptShards_RequiresOutDir(t *testing.T) {
	t.Parallel()

	if _, err := WriteTranscriptShards(HistoryLog{{User: "hi"}}, TranscriptPackOptions{}); err == nil {
		t.Fatalf("expected error for empty OutDir")
	}
}

func TestWriteTranscriptIndex_JSONL(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transcript_index.jsonl")
	records := []TranscriptIndexRecord{
		{SessionID: "s1", Turns: 2, ShardFile: "transcript_0001.md", Anchor: "session-1-s1", Sentiments: map[Sentiment]int{Positive: 1, Neutral: 1}},
		{SessionID: "s2", Turns: 1, ShardFile: "transcript_0001.md", Anchor: "session-2-s2", Sentiments: map[Sentiment]int{Negative: 1}},
	}
	if err := WriteTranscriptIndex(path, records, false); err != nil {
		t.Fatalf("WriteTranscriptIndex: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var got []TranscriptIndexRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r TranscriptIndexRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("line %d: %v", len(got)+1, err)
		}
		got = append(got, r)
	}
	if len(got) != 2 || got[1].Anchor != "session-2-s2" || got[1].Sentiments[Negative] != 1 {
		t.Fatalf("got=%+v", got)
	}

	if err := WriteTranscriptIndex(path, records, false); err == nil {
		t.Fatalf("expected error for existing index")
	}
}

func TestSanitizeAnchor(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"ABC-123":       "abc-123",
		"  ":            "session",
		"a b/c":         "a-b-c",
		"--weird id!--": "weird-id",
	}
	for in, want := range tests {
		if got := sanitizeAnchor(in); got != want {
			t.Fatalf("sanitizeAnchor(%q)=%q want %q", in, got, want)
		}
	}
}
