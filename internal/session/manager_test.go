package session

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestAppendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	sess, err := mgr.Get("demo")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}

	appended := []Entry{
		Query("summarize this", "summarize"),
		Reply("a summary"),
		Query("shorter", "summarize"),
		Reply("short"),
	}
	for _, e := range appended {
		if err := sess.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := mgr.Load("demo")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(reloaded.Entries(), appended) {
		t.Fatalf("reloaded=%+v\nwant=%+v", reloaded.Entries(), appended)
	}
}

func TestLoadUnknownRoleIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odd.yml")
	doc := "- role: user\n  content: hello\n- role: cow\n  content: moo\n- role: assistant\n  content: hi\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	sess, err := NewManager(dir).Load("odd")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer sess.Close()

	entries := sess.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[1].Known() {
		t.Fatalf("entry[1]=%+v should be unknown", entries[1])
	}
	if !entries[0].IsQuery() || !entries[2].IsReply() {
		t.Fatalf("entries=%+v", entries)
	}
}

func TestLoadAcceptsRoleAliases(t *testing.T) {
	dir := t.TempDir()
	doc := "- role: query\n  content: hello\n- role: reply\n  content: hi\n"
	if err := os.WriteFile(filepath.Join(dir, "alias.yml"), []byte(doc), 0644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	sess, err := NewManager(dir).Load("alias")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer sess.Close()

	if !sess.Entries()[0].IsQuery() || !sess.Entries()[1].IsReply() {
		t.Fatalf("entries=%+v", sess.Entries())
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := NewManager(t.TempDir()).Load("ghost"); err == nil {
		t.Fatal("expected load error for missing file")
	}
}

func TestLoadOrCreateRecoversFromGarbage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("{{{ not yaml"), 0644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	sess, err := NewManager(dir).LoadOrCreate("broken")
	if err != nil {
		t.Fatalf("load or create: %v", err)
	}
	defer sess.Close()

	if len(sess.Entries()) != 0 {
		t.Fatalf("entries=%+v, want empty", sess.Entries())
	}
	if sess.IsEphemeral() {
		t.Fatal("recovered session should be stored")
	}
}

func TestPruneKeepsMostRecent(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)
	sess, err := mgr.Get("prune")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	var all []Entry
	for i := 0; i < 5; i++ {
		e := Query(string(rune('a'+i)), "")
		all = append(all, e)
		if err := sess.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	discarded, err := sess.Prune(2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !reflect.DeepEqual(discarded, all[:3]) {
		t.Fatalf("discarded=%+v, want oldest 3", discarded)
	}
	if !reflect.DeepEqual(sess.Entries(), all[3:]) {
		t.Fatalf("remaining=%+v", sess.Entries())
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := mgr.Load("prune")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer reloaded.Close()
	if !reflect.DeepEqual(reloaded.Entries(), all[3:]) {
		t.Fatalf("reloaded=%+v, want retained entries", reloaded.Entries())
	}
}

func TestPruneUnderLimitIsNoop(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)
	sess, err := mgr.Get("small")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := sess.Append(Query("only", "")); err != nil {
		t.Fatalf("append: %v", err)
	}

	before, err := os.ReadFile(filepath.Join(dir, "small.yml"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	discarded, err := sess.Prune(5)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(discarded) != 0 {
		t.Fatalf("discarded=%+v, want none", discarded)
	}

	after, err := os.ReadFile(filepath.Join(dir, "small.yml"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("file changed by no-op prune")
	}
}

func TestPruneToZeroLeavesAppendableFile(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)
	sess, err := mgr.Get("wipe")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := sess.Append(Query("gone", "")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := sess.Prune(0); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if err := sess.Append(Query("fresh", "")); err != nil {
		t.Fatalf("append after prune: %v", err)
	}
	sess.Close()

	reloaded, err := mgr.Load("wipe")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer reloaded.Close()
	entries := reloaded.Entries()
	if len(entries) != 1 || entries[0].Content != "fresh" {
		t.Fatalf("entries=%+v", entries)
	}
}

func TestEphemeralSessionLeavesNoTrace(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	before, err := mgr.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	sess, err := mgr.Get("")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !sess.IsEphemeral() {
		t.Fatal("unnamed session should be ephemeral")
	}
	if err := sess.Append(Query("hi", "")); err != nil {
		t.Fatalf("append: %v", err)
	}
	discarded, err := sess.Prune(0)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(discarded) != 0 {
		t.Fatalf("ephemeral prune discarded %+v, want nothing", discarded)
	}
	if len(sess.Entries()) != 1 {
		t.Fatalf("ephemeral prune dropped entries: %+v", sess.Entries())
	}
	if err := sess.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	after, err := mgr.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("store changed: before=%v after=%v", before, after)
	}
}

func TestGetNamedCreatesExactlyOneFile(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	sess, err := mgr.Get("fresh")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer sess.Close()

	if len(sess.Entries()) != 0 {
		t.Fatalf("entries=%+v, want empty", sess.Entries())
	}
	names, err := mgr.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"fresh"}) {
		t.Fatalf("names=%v", names)
	}
}

func TestListFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"one.yml":        "",
		"two.yml":        "",
		"notes.txt":      "x",
		"config.yml.bak": "x",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	names, err := NewManager(dir).List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("names=%v, want two sessions", names)
	}
	for _, n := range names {
		if n != "one" && n != "two" {
			t.Fatalf("unexpected name %q", n)
		}
	}
}

func TestClearRemovesBackingFile(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)
	sess, err := mgr.Get("gone")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := sess.Append(Query("x", "")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := sess.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.yml")); !os.IsNotExist(err) {
		t.Fatalf("file should be gone, stat err=%v", err)
	}
}

func TestRemoveDeletesCorruptTranscript(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("{{{ not yaml"), 0644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	mgr := NewManager(dir)
	if _, err := mgr.Load("broken"); err == nil {
		t.Fatal("garbage transcript should not load")
	}
	if err := mgr.Remove("broken"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "broken.yml")); !os.IsNotExist(err) {
		t.Fatalf("file should be gone, stat err=%v", err)
	}
}

func TestRemoveMissingSessionFails(t *testing.T) {
	if err := NewManager(t.TempDir()).Remove("ghost"); err == nil {
		t.Fatal("expected error removing a missing session")
	}
}
