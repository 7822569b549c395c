// Package html renders resolved runs as a self-contained interactive
// HTML document.
//
// The document needs no external assets. Hover intents become
// pointer-anchored tooltips, copy intents write to the clipboard with
// failures logged to the console, blocked intents show a not-allowed
// cursor, and obfuscated runs keep scrambling client-side when a
// scramble interval is configured. Links navigate in a new context by
// default and inherit the surrounding run's color and decoration
// instead of restyling themselves.
package html

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chatglass/chatglass/pkg/action"
	"github.com/chatglass/chatglass/pkg/errors"
	"github.com/chatglass/chatglass/pkg/obfuscate"
	"github.com/chatglass/chatglass/pkg/resolve"
)

// LinkTargetInherit makes links navigate in the current context
// instead of a new one when passed to [WithLinkTarget].
const LinkTargetInherit = "inherit"

const chatCSS = `
    body { margin: 0; background: #17181c; color: #e8e8e8; }
    .chat { padding: 24px; font: 16px/1.6 "JetBrains Mono", "Fira Code", ui-monospace, monospace; white-space: pre-wrap; }
    .chat-line { margin: 0; }
    .run-link { color: inherit; text-decoration: inherit; cursor: pointer; }
    .run-copy { cursor: pointer; }
    .run-copy.flash { outline: 1px solid #55FF55; border-radius: 2px; }
    .run-blocked { cursor: not-allowed; }
    .tooltip { position: fixed; left: 0; top: 0; visibility: hidden; pointer-events: none;
               background: #26272e; border: 1px solid #3a3b44; border-radius: 4px;
               padding: 4px 8px; white-space: pre-wrap; z-index: 10; }`

const tooltipJS = `
    const margin = 12;
    document.querySelectorAll('[data-tip]').forEach(el => {
      const tip = document.getElementById(el.dataset.tip);
      if (!tip) return;
      el.addEventListener('mousemove', e => {
        const box = tip.getBoundingClientRect();
        let x = e.clientX + margin;
        let y = e.clientY + margin;
        if (x + box.width > window.innerWidth - 8) x = e.clientX - box.width - margin;
        if (y + box.height > window.innerHeight - 8) y = e.clientY - box.height - margin;
        tip.style.left = x.toFixed(0) + 'px';
        tip.style.top = y.toFixed(0) + 'px';
      });
      el.addEventListener('mouseenter', () => { tip.style.visibility = 'visible'; });
      el.addEventListener('mouseleave', () => { tip.style.visibility = 'hidden'; });
    });`

const copyJS = `
    document.querySelectorAll('.run-copy').forEach(el => {
      el.addEventListener('click', () => {
        navigator.clipboard.writeText(el.dataset.copy)
          .then(() => { el.classList.add('flash'); setTimeout(() => el.classList.remove('flash'), 300); })
          .catch(err => console.warn('copy failed:', err));
      });
    });`

// scrambleJS re-derives the length from the current value on every
// tick, matching the scheduler's length rule.
const scrambleJS = `
    const alphabet = %q;
    document.querySelectorAll('.run-scramble').forEach(el => {
      setInterval(() => {
        const n = Array.from(el.textContent).length;
        let s = '';
        for (let i = 0; i < n; i++) s += alphabet[Math.floor(Math.random() * alphabet.length)];
        el.textContent = s;
      }, %d);
    });`

// Option configures HTML rendering.
type Option func(*renderer)

type renderer struct {
	title      string
	fragment   bool
	linkTarget string
	interval   time.Duration
}

// WithTitle sets the document title.
func WithTitle(s string) Option { return func(r *renderer) { r.title = s } }

// WithFragment emits only the chat markup and scripts, without the
// document shell, for embedding in a larger page.
func WithFragment() Option { return func(r *renderer) { r.fragment = true } }

// WithLinkTarget sets the default target for links whose intent does
// not carry its own. [LinkTargetInherit] keeps navigation in the
// current context.
func WithLinkTarget(s string) Option { return func(r *renderer) { r.linkTarget = s } }

// WithScrambleInterval embeds a client-side scramble loop so
// obfuscated runs keep animating in the browser. Zero or negative
// leaves them as static snapshots.
func WithScrambleInterval(d time.Duration) Option { return func(r *renderer) { r.interval = d } }

// Render renders runs as HTML. The result is deterministic for a
// given run tree snapshot and safe against markup injection: all run
// content and attribute payloads are escaped, and link URLs that fail
// validation are downgraded to blocked presentation.
func Render(runs []*resolve.Run, opts ...Option) []byte {
	r := renderer{title: "chatglass", linkTarget: "_blank"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	if !r.fragment {
		writeHead(&buf, r.title)
	}

	buf.WriteString("<div class=\"chat\">\n")
	for _, root := range runs {
		buf.WriteString("  <p class=\"chat-line\">")
		r.writeRun(&buf, root)
		buf.WriteString("</p>\n")
	}
	buf.WriteString("</div>\n")

	r.writeTooltips(&buf, runs)
	r.writeScripts(&buf, runs)

	if !r.fragment {
		buf.WriteString("</body>\n</html>\n")
	}
	return buf.Bytes()
}

func writeHead(buf *bytes.Buffer, title string) {
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	buf.WriteString("<meta charset=\"utf-8\">\n")
	buf.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(buf, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(buf, "<style>%s\n</style>\n", chatCSS)
	buf.WriteString("</head>\n<body>\n")
}

func (r *renderer) writeRun(buf *bytes.Buffer, run *resolve.Run) {
	content := run.Content()
	if content != "" || run.Hover != nil {
		r.writeSpan(buf, run, content)
	}
	for _, c := range run.Children {
		r.writeRun(buf, c)
	}
}

func (r *renderer) writeSpan(buf *bytes.Buffer, run *resolve.Run, content string) {
	classes := []string{"run"}
	attrs := []string{attr("data-key", run.Key)}
	tag := "span"

	click := run.Click
	if click.Kind == action.ClickOpenURL && errors.ValidateURL(click.URL) != nil {
		// An unsafe or unparseable URL renders like a blocked action
		// rather than a live link.
		click = action.Click{Kind: action.ClickBlocked, Action: action.ClickActionOpenURL}
	}

	switch click.Kind {
	case action.ClickOpenURL:
		tag = "a"
		classes = append(classes, "run-link")
		attrs = append(attrs, attr("href", click.URL))
		if target := r.targetFor(click); target != "" {
			attrs = append(attrs, attr("target", target), attr("rel", "noopener noreferrer"))
		}
	case action.ClickCopy:
		classes = append(classes, "run-copy")
		attrs = append(attrs, attr("data-copy", click.Text))
	case action.ClickBlocked:
		classes = append(classes, "run-blocked")
		attrs = append(attrs, attr("title", "action unavailable: "+click.Action))
	}

	if run.Scrambler != nil {
		classes = append(classes, "run-scramble")
	}
	if run.Hover != nil {
		attrs = append(attrs, attr("data-tip", tooltipID(run.Key)))
	}
	if style := styleAttr(run.Style); style != "" {
		attrs = append(attrs, attr("style", style))
	}

	fmt.Fprintf(buf, "<%s %s %s>%s</%s>",
		tag, attr("class", strings.Join(classes, " ")), strings.Join(attrs, " "),
		html.EscapeString(content), tag)
}

// attr emits a double-quoted attribute with an HTML-escaped value.
func attr(name, value string) string {
	return name + "=\"" + html.EscapeString(value) + "\""
}

// targetFor picks the link target: the intent's own hint wins over the
// renderer default, and inherit suppresses the attribute entirely.
func (r *renderer) targetFor(click action.Click) string {
	target := click.Target
	if target == "" {
		target = r.linkTarget
	}
	if target == LinkTargetInherit {
		return ""
	}
	return target
}

func (r *renderer) writeTooltips(buf *bytes.Buffer, runs []*resolve.Run) {
	var hosts []*resolve.Run
	for _, root := range runs {
		root.Walk(func(run *resolve.Run) {
			if run.Hover != nil {
				hosts = append(hosts, run)
			}
		})
	}
	if len(hosts) == 0 {
		return
	}

	for _, host := range hosts {
		fmt.Fprintf(buf, "<span class=\"tooltip\" %s>", attr("id", tooltipID(host.Key)))
		r.writeRun(buf, host.Hover.Content)
		buf.WriteString("</span>\n")
	}
}

func (r *renderer) writeScripts(buf *bytes.Buffer, runs []*resolve.Run) {
	var hasTip, hasCopy, hasScramble bool
	for _, root := range runs {
		root.Walk(func(run *resolve.Run) {
			hasTip = hasTip || run.Hover != nil
			hasCopy = hasCopy || run.Click.Kind == action.ClickCopy
			hasScramble = hasScramble || run.Scrambler != nil
		})
	}

	var js []string
	if hasTip {
		js = append(js, tooltipJS)
	}
	if hasCopy {
		js = append(js, copyJS)
	}
	if hasScramble && r.interval > 0 {
		js = append(js, fmt.Sprintf(scrambleJS, obfuscate.Alphabet, r.interval.Milliseconds()))
	}
	if len(js) == 0 {
		return
	}
	fmt.Fprintf(buf, "<script>%s\n</script>\n", strings.Join(js, "\n"))
}

func tooltipID(key string) string { return "tip-" + key }

func styleAttr(s resolve.Style) string {
	if s.IsPlain() {
		return ""
	}
	var parts []string
	if s.HasColor() {
		parts = append(parts, "color:"+s.Color)
	}
	if s.Bold {
		parts = append(parts, "font-weight:bold")
	}
	if s.Italic {
		parts = append(parts, "font-style:italic")
	}
	if deco := decoration(s); deco != "" {
		parts = append(parts, "text-decoration:"+deco)
	}
	return strings.Join(parts, ";")
}

// decoration composes underline and strikethrough; both apply when
// both resolve true.
func decoration(s resolve.Style) string {
	switch {
	case s.Underlined && s.Strikethrough:
		return "underline line-through"
	case s.Underlined:
		return "underline"
	case s.Strikethrough:
		return "line-through"
	}
	return ""
}
