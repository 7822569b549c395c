package resolve

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chatglass/chatglass/pkg/action"
	"github.com/chatglass/chatglass/pkg/component"
	"github.com/chatglass/chatglass/pkg/obfuscate"
)

func TestResolveHelloWorld(t *testing.T) {
	root := &component.Component{
		Text: "Hello ",
		Extra: []*component.Component{
			{Text: "world", Bold: boolPtr(true), Color: "red"},
		},
	}

	run, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	if run.Text != "Hello " {
		t.Fatalf("root text = %q, want %q", run.Text, "Hello ")
	}
	if run.Style != (Style{}) {
		t.Fatalf("root style = %+v, want default", run.Style)
	}
	if len(run.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(run.Children))
	}

	child := run.Children[0]
	if child.Text != "world" {
		t.Fatalf("child text = %q, want %q", child.Text, "world")
	}
	if want := (Style{Bold: true, Color: "#FF5555"}); child.Style != want {
		t.Fatalf("child style = %+v, want %+v", child.Style, want)
	}
}

func TestResolveChildrenInheritResolvedStyle(t *testing.T) {
	// The grandchild inherits the middle node's resolved style, which
	// already folded in the root's color.
	root := &component.Component{
		Color: "gold",
		Extra: []*component.Component{
			{
				Bold: boolPtr(true),
				Extra: []*component.Component{
					{Text: "deep"},
				},
			},
		},
	}

	run, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	deep := run.Children[0].Children[0]
	if want := (Style{Bold: true, Color: "#FFAA00"}); deep.Style != want {
		t.Fatalf("grandchild style = %+v, want %+v", deep.Style, want)
	}
}

func TestResolveEmptyNodeStillEmitsRun(t *testing.T) {
	run, err := Resolve(&component.Component{Color: "red"}, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	if run.Content() != "" {
		t.Fatalf("empty node content = %q, want empty", run.Content())
	}
	if run.Key != "0" {
		t.Fatalf("empty node key = %q, want %q", run.Key, "0")
	}
	if run.Style.Color != "#FF5555" {
		t.Fatalf("empty node color = %q, want %q", run.Style.Color, "#FF5555")
	}
}

func TestResolveKeys(t *testing.T) {
	root := &component.Component{
		Text: "a",
		Extra: []*component.Component{
			{Text: "b"},
			{
				Text: "c",
				Extra: []*component.Component{
					{Text: "d"},
				},
			},
		},
	}

	run, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	var keys []string
	run.Walk(func(r *Run) { keys = append(keys, r.Key) })

	want := []string{"0", "0.0", "0.1", "0.1.0"}
	if len(keys) != len(want) {
		t.Fatalf("walked %d runs, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestResolveKeysStableAcrossPasses(t *testing.T) {
	root := &component.Component{
		Text:  "a",
		Extra: []*component.Component{{Text: "b"}, {Text: "c"}},
	}

	first, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer first.Release()
	second, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer second.Release()

	a, b := first.Flatten(), second.Flatten()
	if len(a) != len(b) {
		t.Fatalf("pass sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Key != b[i].Key {
			t.Fatalf("key[%d] differs across passes: %q vs %q", i, a[i].Key, b[i].Key)
		}
		if a[i].Text != b[i].Text {
			t.Fatalf("text[%d] differs across passes: %q vs %q", i, a[i].Text, b[i].Text)
		}
		if a[i] == b[i] {
			t.Fatal("passes share a Run; each pass must build a fresh tree")
		}
	}
}

func TestResolveAllKeysRootsByIndex(t *testing.T) {
	runs, err := ResolveAll([]*component.Component{
		component.Text("one"),
		component.Text("two"),
	}, Options{})
	if err != nil {
		t.Fatalf("ResolveAll() error: %v", err)
	}
	defer ReleaseAll(runs)

	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].Key != "0" || runs[1].Key != "1" {
		t.Fatalf("root keys = %q, %q, want 0, 1", runs[0].Key, runs[1].Key)
	}
}

func TestResolveClickIntent(t *testing.T) {
	root := &component.Component{
		Text:       "click me",
		ClickEvent: &component.ClickEvent{Action: "open_url", Value: "https://example.com"},
	}

	run, err := Resolve(root, Options{LinkTarget: "panel"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	if run.Click.Kind != action.ClickOpenURL {
		t.Fatalf("click kind = %v, want open_url", run.Click.Kind)
	}
	if run.Click.URL != "https://example.com" {
		t.Fatalf("click url = %q", run.Click.URL)
	}
	if run.Click.Target != "panel" {
		t.Fatalf("click target = %q, want %q", run.Click.Target, "panel")
	}
}

func TestResolveLinkTargetOnlyOnOpenURL(t *testing.T) {
	root := &component.Component{
		Text:       "copy me",
		ClickEvent: &component.ClickEvent{Action: "copy_to_clipboard", Value: "x"},
	}

	run, err := Resolve(root, Options{LinkTarget: "panel"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	if run.Click.Kind != action.ClickCopy {
		t.Fatalf("click kind = %v, want copy", run.Click.Kind)
	}
	if run.Click.Target != "" {
		t.Fatalf("copy intent carries target %q", run.Click.Target)
	}
}

func TestResolveBlockedClick(t *testing.T) {
	root := &component.Component{
		Text:       "no",
		ClickEvent: &component.ClickEvent{Action: "run_command", Value: "/stop"},
	}

	run, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	if run.Click.Kind != action.ClickBlocked || run.Click.Action != "run_command" {
		t.Fatalf("click = %+v, want blocked run_command", run.Click)
	}
}

func TestResolveHoverFreshDefaultStyle(t *testing.T) {
	tip := &component.Component{Text: "tooltip"}
	hostA := &component.Component{
		Text:       "host",
		Bold:       boolPtr(true),
		Color:      "red",
		HoverEvent: &component.HoverEvent{Action: "show_text", Value: tip},
	}
	hostB := &component.Component{
		Text:       "host",
		Italic:     boolPtr(true),
		Color:      "gold",
		HoverEvent: &component.HoverEvent{Action: "show_text", Value: tip},
	}

	runA, err := Resolve(hostA, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer runA.Release()
	runB, err := Resolve(hostB, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer runB.Release()

	if runA.Hover == nil || runB.Hover == nil {
		t.Fatal("hover intent missing")
	}
	if runA.Hover.Content.Style != runB.Hover.Content.Style {
		t.Fatalf("hover style depends on host: %+v vs %+v",
			runA.Hover.Content.Style, runB.Hover.Content.Style)
	}
	if runA.Hover.Content.Style != (Style{}) {
		t.Fatalf("hover style = %+v, want default", runA.Hover.Content.Style)
	}
	if runA.Hover.Content.Key != "0.hover" {
		t.Fatalf("hover key = %q, want %q", runA.Hover.Content.Key, "0.hover")
	}
}

func TestResolveHoverStyledContentKeepsOwnStyle(t *testing.T) {
	root := &component.Component{
		Text: "host",
		HoverEvent: &component.HoverEvent{
			Action: "show_text",
			Value:  &component.Component{Text: "tip", Color: "aqua", Italic: boolPtr(true)},
		},
	}

	run, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	want := Style{Italic: true, Color: "#55FFFF"}
	if run.Hover.Content.Style != want {
		t.Fatalf("hover content style = %+v, want %+v", run.Hover.Content.Style, want)
	}
}

func TestResolveUnsupportedHoverDropsTooltip(t *testing.T) {
	root := &component.Component{
		Text:       "item",
		HoverEvent: &component.HoverEvent{Action: "show_item", Value: component.Text("x")},
	}

	run, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	if run.Hover != nil {
		t.Fatal("unsupported hover produced a tooltip")
	}
}

func TestResolveNoHover(t *testing.T) {
	root := &component.Component{
		Text:       "host",
		HoverEvent: &component.HoverEvent{Action: "show_text", Value: component.Text("tip")},
	}

	run, err := Resolve(root, Options{NoHover: true})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	if run.Hover != nil {
		t.Fatal("hover resolved despite NoHover")
	}
}

func TestResolveObfuscatedSinglePass(t *testing.T) {
	root := &component.Component{Text: "hi", Obfuscated: boolPtr(true)}

	run, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	if run.Scrambler == nil {
		t.Fatal("obfuscated run has no scrambler")
	}
	if run.Text != "" {
		t.Fatalf("obfuscated run static text = %q, want empty", run.Text)
	}

	got := run.Content()
	if len(got) != 2 {
		t.Fatalf("scrambled content = %q, want 2 characters", got)
	}
	for _, r := range got {
		if !strings.ContainsRune(obfuscate.Alphabet, r) {
			t.Fatalf("scrambled content %q contains %q outside the alphabet", got, r)
		}
	}
	if run.Scrambler.Running() {
		t.Fatal("disabled interval armed a timer")
	}
}

func TestResolveObfuscationInherits(t *testing.T) {
	root := &component.Component{
		Obfuscated: boolPtr(true),
		Extra: []*component.Component{
			{Text: "secret"},
			{Text: "shown", Obfuscated: boolPtr(false)},
		},
	}

	run, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	if run.Children[0].Scrambler == nil {
		t.Fatal("child inheriting obfuscated=true got no scrambler")
	}
	if run.Children[1].Scrambler != nil {
		t.Fatal("child overriding obfuscated=false got a scrambler")
	}
	if run.Children[1].Text != "shown" {
		t.Fatalf("static child text = %q, want %q", run.Children[1].Text, "shown")
	}
}

func TestResolveSeedDeterminism(t *testing.T) {
	root := &component.Component{
		Extra: []*component.Component{
			{Text: "secret", Obfuscated: boolPtr(true)},
			{Text: "secret", Obfuscated: boolPtr(true)},
		},
	}

	first, err := Resolve(root, Options{Seed: 99})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer first.Release()
	second, err := Resolve(root, Options{Seed: 99})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer second.Release()

	if first.Children[0].Content() != second.Children[0].Content() {
		t.Fatalf("same seed diverged: %q vs %q",
			first.Children[0].Content(), second.Children[0].Content())
	}
	// Sibling nodes fold their keys into the seed, so identical text
	// still scrambles differently per node.
	if first.Children[0].Content() == first.Children[1].Content() {
		t.Fatalf("sibling scramblers share a stream: %q", first.Children[0].Content())
	}
}

func TestResolveReleaseStopsTimers(t *testing.T) {
	root := &component.Component{
		Text:       "secret",
		Obfuscated: boolPtr(true),
		HoverEvent: &component.HoverEvent{
			Action: "show_text",
			Value:  &component.Component{Text: "tip", Obfuscated: boolPtr(true)},
		},
		Extra: []*component.Component{
			{Text: "child", Obfuscated: boolPtr(true)},
		},
	}

	run, err := Resolve(root, Options{Interval: time.Hour})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if !run.Scrambler.Running() {
		t.Fatal("root scrambler not running after Resolve")
	}
	if !run.Hover.Content.Scrambler.Running() {
		t.Fatal("hover scrambler not running after Resolve")
	}
	if !run.Children[0].Scrambler.Running() {
		t.Fatal("child scrambler not running after Resolve")
	}

	run.Release()

	if run.Scrambler.Running() {
		t.Fatal("root scrambler still running after Release")
	}
	if run.Hover.Content.Scrambler.Running() {
		t.Fatal("hover scrambler still running after Release")
	}
	if run.Children[0].Scrambler.Running() {
		t.Fatal("child scrambler still running after Release")
	}

	// Releasing twice is safe.
	run.Release()
}

func TestResolveOnScramble(t *testing.T) {
	var keys []string
	root := &component.Component{
		Extra: []*component.Component{
			{Text: "aa", Obfuscated: boolPtr(true)},
			{Text: "bb", Obfuscated: boolPtr(true)},
		},
	}

	// Disabled interval scrambles synchronously during Resolve, so the
	// callback fires before it returns.
	run, err := Resolve(root, Options{
		OnScramble: func(key, value string) { keys = append(keys, key) },
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	if len(keys) != 2 || keys[0] != "0.0" || keys[1] != "0.1" {
		t.Fatalf("OnScramble keys = %v, want [0.0 0.1]", keys)
	}
}

func TestResolveValidatesInput(t *testing.T) {
	if _, err := Resolve(nil, Options{}); !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("Resolve(nil) error = %v, want ErrNilComponent", err)
	}

	cyclic := &component.Component{Text: "a"}
	cyclic.Extra = []*component.Component{cyclic}
	if _, err := Resolve(cyclic, Options{}); !errors.Is(err, component.ErrTreeCycle) {
		t.Fatalf("Resolve(cycle) error = %v, want ErrTreeCycle", err)
	}

	_, err := ResolveAll([]*component.Component{component.Text("ok"), nil}, Options{})
	if !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("ResolveAll() error = %v, want ErrNilComponent", err)
	}
}

func TestFlattenPaintOrder(t *testing.T) {
	root := &component.Component{
		Text: "a",
		Extra: []*component.Component{
			{Text: "b", Extra: []*component.Component{{Text: "c"}}},
			{Text: "d"},
		},
	}

	run, err := Resolve(root, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer run.Release()

	var texts []string
	for _, r := range run.Flatten() {
		texts = append(texts, r.Text)
	}
	want := "a b c d"
	if got := strings.Join(texts, " "); got != want {
		t.Fatalf("paint order = %q, want %q", got, want)
	}
}
