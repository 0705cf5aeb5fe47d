package responder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func intPtr(n int) *int { return &n }

func TestExtract_Name(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want string
	}{
		{"my name is alice", "Alice"},
		{"My Name Is BOB", "Bob"},
		{"Hi, I am carol", "Carol"},
		{"i'm dave by the way", "Dave"},
		{"please call me EVE", "Eve"},
		{"my name is Jean Luc", "Jean"},
		{"my name is José", "José"},
		{"call me ÉLODIE", "Élodie"},
	}
	for _, tc := range cases {
		p := UserProfile{Name: "Previous"}
		if !Extract(tc.text, &p) {
			t.Fatalf("Extract(%q) reported no change", tc.text)
		}
		if p.Name != tc.want {
			t.Fatalf("Extract(%q).Name=%q, want %q", tc.text, p.Name, tc.want)
		}
	}
}

func TestExtract_FirstNamePatternWins(t *testing.T) {
	t.Parallel()

	p := UserProfile{}
	Extract("call me maybe, my name is zed", &p)
	if p.Name != "Zed" {
		t.Fatalf("Name=%q, want Zed", p.Name)
	}
}

func TestExtract_Age(t *testing.T) {
	t.Parallel()

	p := UserProfile{}
	Extract("I am 30 years old", &p)
	if p.Age == nil || *p.Age != 30 {
		t.Fatalf("Age=%v, want 30", p.Age)
	}
	// "i am 30" matches the name pattern too; digits count as name characters.
	if p.Name != "30" {
		t.Fatalf("Name=%q", p.Name)
	}

	p = UserProfile{}
	Extract("turning 1 year old", &p)
	if p.Age == nil || *p.Age != 1 {
		t.Fatalf("Age=%v, want 1", p.Age)
	}
}

func TestExtract_AgeOverCapturesAnyNumber(t *testing.T) {
	t.Parallel()

	p := UserProfile{}
	if !Extract("I have 5 dollars", &p) {
		t.Fatalf("expected change")
	}
	if p.Age == nil || *p.Age != 5 {
		t.Fatalf("Age=%v, want 5", p.Age)
	}
}

func TestExtract_AgeOverflowIsDiscarded(t *testing.T) {
	t.Parallel()

	p := UserProfile{Age: intPtr(40)}
	if Extract("order 99999999999999999999999 widgets", &p) {
		t.Fatalf("expected no change")
	}
	if *p.Age != 40 {
		t.Fatalf("Age=%d, want 40", *p.Age)
	}
}

func TestExtract_Interests(t *testing.T) {
	t.Parallel()

	p := UserProfile{}
	Extract("I like jazz and reading", &p)
	if diff := cmp.Diff([]string{"jazz and reading"}, p.Interests); diff != "" {
		t.Fatalf("Interests mismatch (-want +got):\n%s", diff)
	}

	// Each pattern is tried independently, so two can fire in one call.
	Extract("i love hiking. i enjoy chess", &p)
	want := []string{"jazz and reading", "hiking. i enjoy chess", "chess"}
	if diff := cmp.Diff(want, p.Interests); diff != "" {
		t.Fatalf("Interests mismatch (-want +got):\n%s", diff)
	}

	// Duplicates are kept.
	Extract("I enjoy chess", &p)
	if got := p.Interests[len(p.Interests)-1]; got != "chess" || len(p.Interests) != 4 {
		t.Fatalf("Interests=%v", p.Interests)
	}
}

func TestExtract_InterestLengthLimit(t *testing.T) {
	t.Parallel()

	p := UserProfile{}
	long := "i like " + repeat("x", 50)
	if Extract(long, &p) {
		t.Fatalf("expected no change for 50-char interest")
	}
	ok := "i like " + repeat("y", 49)
	if !Extract(ok, &p) || len(p.Interests) != 1 {
		t.Fatalf("Interests=%v", p.Interests)
	}
}

func TestExtract_InterestLimitCountsCharacters(t *testing.T) {
	t.Parallel()

	p := UserProfile{}
	accented := repeat("é", 30)
	if !Extract("i like "+accented, &p) {
		t.Fatalf("expected 30-char accented interest to be kept")
	}
	if len(p.Interests) != 1 || p.Interests[0] != accented {
		t.Fatalf("Interests=%v", p.Interests)
	}

	p = UserProfile{}
	if Extract("i like "+repeat("é", 50), &p) {
		t.Fatalf("expected no change for 50-char accented interest")
	}
}

func TestExtract_NoMatchLeavesProfile(t *testing.T) {
	t.Parallel()

	before := UserProfile{Name: "Sam", Age: intPtr(30), Interests: []string{"chess"}}
	p := before
	p.Interests = append([]string(nil), before.Interests...)
	if Extract("the weather is fine", &p) {
		t.Fatalf("expected no change")
	}
	if diff := cmp.Diff(before, p, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("profile changed (-before +after):\n%s", diff)
	}
	if Extract("anything", nil) {
		t.Fatalf("nil profile must report no change")
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
