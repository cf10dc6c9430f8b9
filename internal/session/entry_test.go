package session

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEntryFragmentConcatenation(t *testing.T) {
	// Appends write one-element sequence fragments; concatenated they must
	// read back as a single document.
	var doc strings.Builder
	for _, e := range []Entry{Query("hello", "summarize"), Reply("hi")} {
		frag, err := yaml.Marshal([]Entry{e})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		doc.Write(frag)
	}

	var entries []Entry
	if err := yaml.Unmarshal([]byte(doc.String()), &entries); err != nil {
		t.Fatalf("unmarshal concatenated doc: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries=%+v", entries)
	}
	if entries[0].Pattern != "summarize" || entries[1].Role != RoleAssistant {
		t.Fatalf("entries=%+v", entries)
	}
}

func TestQueryOmitsEmptyPattern(t *testing.T) {
	frag, err := yaml.Marshal([]Entry{Query("hello", "")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(frag), "pattern") {
		t.Fatalf("fragment=%q, pattern field should be omitted", frag)
	}
}

func TestUnknownRoleParsesAsUnknown(t *testing.T) {
	input := "- role: cow\n  content: |\n    Moo? Moo!\n"

	var entries []Entry
	if err := yaml.Unmarshal([]byte(input), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%+v", entries)
	}
	if entries[0].Known() {
		t.Fatalf("entry=%+v should be unknown", entries[0])
	}
}
