// Package convert turns decoded traces into external formats: Chrome Trace
// Event Format JSON for catapult-style viewers and pprof profiles built from
// scope durations.
package convert

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/event"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/wire"
)

// Chrome Trace Event Format phases used by the converter.
const (
	phaseDurationBegin = "B"
	phaseDurationEnd   = "E"
	phaseInstant       = "i"
	phaseMetadata      = "M"
)

type chromeEvent struct {
	Name      string         `json:"name,omitempty"`
	Phase     string         `json:"ph"`
	ProcessID int            `json:"pid"`
	ThreadID  uint32         `json:"tid"`
	TimeStamp uint32         `json:"ts"`
	Scope     string         `json:"s,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
}

type chromeTrace struct {
	TraceEvents     []chromeEvent `json:"traceEvents"`
	DisplayTimeUnit string        `json:"displayTimeUnit"`
}

// ToChrome writes trace as Chrome Trace Event Format JSON. Scoped events map
// to duration begin/end pairs, instance events to instants; each thread's
// chunk name becomes a thread_name record. Built-in wtf.* records other than
// scope leave, including zone metadata, are skipped.
func ToChrome(trace *wire.Trace, w io.Writer) error {
	out := chromeTrace{
		TraceEvents:     []chromeEvent{},
		DisplayTimeUnit: "ms",
	}

	for _, thread := range trace.Threads {
		out.TraceEvents = append(out.TraceEvents, chromeEvent{
			Name:     "thread_name",
			Phase:    phaseMetadata,
			ThreadID: thread.ID,
			Args:     map[string]any{"name": thread.Name},
		})

		for _, ev := range thread.Events {
			if strings.HasPrefix(ev.Name, "wtf.") && ev.WireID != event.WireIDScopeLeave {
				continue
			}

			ce := chromeEvent{
				Name:      ev.Name,
				ThreadID:  thread.ID,
				TimeStamp: ev.Time,
				Args:      chromeArgs(ev.Args),
			}
			switch {
			case ev.WireID == event.WireIDScopeLeave:
				ce.Name = ""
				ce.Phase = phaseDurationEnd
			case ev.Class == event.ClassScoped:
				ce.Phase = phaseDurationBegin
			default:
				ce.Phase = phaseInstant
				ce.Scope = "t"
			}
			out.TraceEvents = append(out.TraceEvents, ce)
		}
	}

	enc := json.NewEncoder(w)
	return enc.Encode(&out)
}

func chromeArgs(args []wire.ArgValue) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args))
	for _, a := range args {
		if a.Type == "ascii" {
			out[a.Name] = a.Str
		} else {
			out[a.Name] = a.Int()
		}
	}
	return out
}
