// Package obfuscate implements the text-scramble animation behind the
// obfuscated style flag.
//
// Each obfuscated text node owns one Scrambler. With a positive
// interval the Scrambler arms a one-shot timer on Start; every fire
// replaces the value with a fresh random string of the same rune count
// and arms the next timer, indefinitely, until Stop. With the interval
// disabled (zero or negative) Start performs exactly one synchronous
// scramble and creates no timer, so the value never changes again
// without an explicit Restart.
//
// Scramblers are independent. A document with many obfuscated nodes
// runs many uncoordinated timers, each owning its value exclusively.
// All methods are safe for concurrent use.
package obfuscate

import (
	"math/rand/v2"
	"sync"
	"time"
	"unicode/utf8"
)

// Alphabet is the 62-character pool scrambled values are drawn from.
// Every position of every scramble is chosen independently and
// uniformly from it.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Scramble returns a random string of n characters drawn from
// Alphabet. A nil rng uses the shared process-wide source.
func Scramble(rng *rand.Rand, n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		if rng != nil {
			b[i] = Alphabet[rng.IntN(len(Alphabet))]
		} else {
			b[i] = Alphabet[rand.IntN(len(Alphabet))]
		}
	}
	return string(b)
}

// Option configures a Scrambler.
type Option func(*Scrambler)

// WithRand sets the random source. The Scrambler serializes access, so
// the source does not need to be safe for concurrent use.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scrambler) { s.rng = rng }
}

// WithSeed derives a deterministic random source from seed. Two
// Scramblers with the same seed, source text and trigger sequence
// produce identical values, which keeps rendered artifacts cacheable.
func WithSeed(seed uint64) Option {
	return func(s *Scrambler) { s.rng = rand.New(rand.NewPCG(seed, seed^0xdeadbeef)) }
}

// WithNotify registers a callback invoked after every scramble pass
// with the new value. The callback runs outside the Scrambler's lock,
// on the timer goroutine for interval-driven passes.
func WithNotify(fn func(value string)) Option {
	return func(s *Scrambler) { s.notify = fn }
}

// Scrambler is the per-node scramble state machine.
type Scrambler struct {
	mu       sync.Mutex
	source   string
	value    string
	interval time.Duration
	rng      *rand.Rand
	notify   func(string)
	timer    *time.Timer
	running  bool
	gen      uint64
}

// New creates a Scrambler for text. An interval of zero or less means
// disabled: single-pass scrambling only. The Scrambler is inert until
// Start.
func New(text string, interval time.Duration, opts ...Option) *Scrambler {
	s := &Scrambler{
		source:   text,
		value:    text,
		interval: interval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// Start enters the scrambling state. With an interval it arms the
// first timer and returns; the value keeps its current content until
// the first fire. Without one it scrambles once synchronously and
// stops. Start on an already running Scrambler is a no-op.
func (s *Scrambler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.gen++
	if s.interval <= 0 {
		v := s.scrambleLocked()
		fn := s.notify
		s.mu.Unlock()
		if fn != nil {
			fn(v)
		}
		return
	}
	s.running = true
	s.scheduleLocked(s.gen)
	s.mu.Unlock()
}

// Restart stops any pending timer and re-enters the scrambling state.
// With the interval disabled this is the external re-trigger that
// produces one more scramble pass.
func (s *Scrambler) Restart() {
	s.Stop()
	s.Start()
}

// Stop cancels the pending timer, if any. The current value is
// retained. Stop is idempotent and safe to call on a Scrambler that
// never started.
func (s *Scrambler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.running = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Value returns the current text, scrambled or not.
func (s *Scrambler) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Source returns the original text the Scrambler was created with.
func (s *Scrambler) Source() string { return s.source }

// Running reports whether a timer chain is active. Disabled-interval
// Scramblers never report running.
func (s *Scrambler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// scrambleLocked replaces the value with a random string of the same
// rune count and returns it. Length derives from the current value,
// not the source, so it stays stable across passes. Callers hold mu.
func (s *Scrambler) scrambleLocked() string {
	s.value = Scramble(s.rng, utf8.RuneCountInString(s.value))
	return s.value
}

func (s *Scrambler) scheduleLocked(gen uint64) {
	s.timer = time.AfterFunc(s.interval, func() { s.fire(gen) })
}

// fire runs on the timer goroutine. The generation check discards
// fires that raced with a Stop or Restart.
func (s *Scrambler) fire(gen uint64) {
	s.mu.Lock()
	if !s.running || gen != s.gen {
		s.mu.Unlock()
		return
	}
	v := s.scrambleLocked()
	s.scheduleLocked(gen)
	fn := s.notify
	s.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}
