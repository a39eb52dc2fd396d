package assist

import (
	"fmt"
	"strings"
	"testing"
)

func TestFormatHistory_Empty(t *testing.T) {
	if got := formatHistory(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestFormatHistory_RolesAndOrder(t *testing.T) {
	history := []Turn{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}

	got := Format("next", history).History
	want := "Human: hi\nAssistant: hello\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormat_Sections(t *testing.T) {
	history := []Turn{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}

	got := Format("What is 2+2?", history).Body
	want := "You are a helpful AI assistant.\n\n" +
		"Current conversation:\n" +
		"Human: hi\nAssistant: hello\n" +
		"\nHuman: What is 2+2?\n\nAssistant:"
	if got != want {
		t.Fatalf("unexpected prompt body:\n got: %q\nwant: %q", got, want)
	}
}

func TestFormat_SectionOrder(t *testing.T) {
	p := Format("new question", []Turn{{Role: RoleUser, Content: "old question"}})

	framing := strings.Index(p.Body, DefaultFraming)
	history := strings.Index(p.Body, "Human: old question")
	newTurn := strings.Index(p.Body, "Human: new question")
	cue := strings.LastIndex(p.Body, "Assistant:")

	if framing != 0 {
		t.Fatalf("expected framing first, found at %d", framing)
	}
	if !(framing < history && history < newTurn && newTurn < cue) {
		t.Fatalf("sections out of order: framing=%d history=%d new=%d cue=%d", framing, history, newTurn, cue)
	}
	if !strings.HasSuffix(p.Body, "Assistant:") {
		t.Fatalf("expected empty assistant cue at the end, got %q", p.Body)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	history := []Turn{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
	}

	first := Format("c", history)
	second := Format("c", history)
	if first != second {
		t.Fatalf("expected identical output, got %q and %q", first.Body, second.Body)
	}
}

func TestFormat_FiftyTurnsNotTruncated(t *testing.T) {
	var history []Turn
	for i := 0; i < 50; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		history = append(history, Turn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	block := Format("next", history).History
	lines := strings.Split(strings.TrimSuffix(block, "\n"), "\n")
	if len(lines) != 50 {
		t.Fatalf("expected 50 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !strings.HasSuffix(line, fmt.Sprintf("turn %d", i)) {
			t.Fatalf("line %d out of order: %q", i, line)
		}
	}
}

func TestFormatWithFraming(t *testing.T) {
	p := FormatWithFraming("You are a pirate.", "ahoy", nil)
	if !strings.HasPrefix(p.Body, "You are a pirate.\n\n") {
		t.Fatalf("expected custom framing, got %q", p.Body)
	}
	if strings.Contains(p.Body, DefaultFraming) {
		t.Fatal("expected default framing to be replaced")
	}
}

func TestFormatWithFraming_BlankFallsBack(t *testing.T) {
	p := FormatWithFraming("   ", "hi", nil)
	if !strings.HasPrefix(p.Body, DefaultFraming) {
		t.Fatalf("expected default framing, got %q", p.Body)
	}
}
