package dispatchtest

import (
	"slices"
	"sync"

	"github.com/bjaus/dispatch"
)

// Log records hook invocations in order. It is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []string
}

// Add appends an entry.
func (l *Log) Add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the recorded entries.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Processor returns a processor that records "<name>.pre" and
// "<name>.post".
func (l *Log) Processor(name string) dispatch.Processor {
	return dispatch.NewProcessor(name,
		func(*dispatch.Exchange) { l.Add(name + ".pre") },
		func(*dispatch.Exchange) { l.Add(name + ".post") },
	)
}

// Action is an action implementing every verb hook. Each hook records
// "<name>.<Hook>" and sets the X-Action response header.
type Action struct {
	ActionName string
	Paths      []dispatch.Path
	Log        *Log
}

func (a *Action) Name() string            { return a.ActionName }
func (a *Action) Routes() []dispatch.Path { return a.Paths }

func (a *Action) record(ex *dispatch.Exchange, hook string) {
	a.Log.Add(a.ActionName + "." + hook)
	ex.SetHeader("X-Action", a.ActionName)
}

func (a *Action) OnGet(ex *dispatch.Exchange)     { a.record(ex, "OnGet") }
func (a *Action) OnPost(ex *dispatch.Exchange)    { a.record(ex, "OnPost") }
func (a *Action) OnPut(ex *dispatch.Exchange)     { a.record(ex, "OnPut") }
func (a *Action) OnPatch(ex *dispatch.Exchange)   { a.record(ex, "OnPatch") }
func (a *Action) OnHead(ex *dispatch.Exchange)    { a.record(ex, "OnHead") }
func (a *Action) OnDelete(ex *dispatch.Exchange)  { a.record(ex, "OnDelete") }
func (a *Action) OnOptions(ex *dispatch.Exchange) { a.record(ex, "OnOptions") }
func (a *Action) OnTrace(ex *dispatch.Exchange)   { a.record(ex, "OnTrace") }
func (a *Action) OnConnect(ex *dispatch.Exchange) { a.record(ex, "OnConnect") }
func (a *Action) OnUnknown(ex *dispatch.Exchange) { a.record(ex, "OnUnknown") }
