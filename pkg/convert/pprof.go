package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/pprof/profile"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/event"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/wire"
)

// openScope is one unclosed scope on a thread's reconstruction stack.
type openScope struct {
	loc       *profile.Location
	enterTime uint32
	childTime uint32
}

// ToPprof builds a wall-time profile from scope durations. Each closed scope
// contributes a sample at its stack with its self time (duration minus
// nested scopes); instance events carry no duration and are skipped. Scopes
// still open at the end of a thread's stream are discarded.
func ToPprof(trace *wire.Trace) (*profile.Profile, error) {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "wall", Unit: "microseconds"},
		},
		TimeNanos: time.Now().UnixNano(),
	}

	locs := make(map[string]*profile.Location)
	samples := make(map[string]*profile.Sample)

	for _, thread := range trace.Threads {
		var stack []openScope

		for _, ev := range thread.Events {
			switch {
			case ev.WireID == event.WireIDScopeLeave:
				if len(stack) == 0 {
					return nil, fmt.Errorf("thread %d: scope leave without enter", thread.ID)
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				total := ev.Time - top.enterTime
				self := total
				if top.childTime < self {
					self -= top.childTime
				} else {
					self = 0
				}
				if len(stack) > 0 {
					stack[len(stack)-1].childTime += total
				}
				addSample(p, samples, stack, top.loc, int64(self))
			case ev.Class == event.ClassScoped:
				stack = append(stack, openScope{
					loc:       location(p, locs, ev.Name),
					enterTime: ev.Time,
				})
			}
		}
	}

	return p, nil
}

func location(p *profile.Profile, locs map[string]*profile.Location, name string) *profile.Location {
	if loc, ok := locs[name]; ok {
		return loc
	}
	fn := &profile.Function{
		ID:         uint64(len(p.Function) + 1),
		Name:       name,
		SystemName: name,
	}
	p.Function = append(p.Function, fn)
	loc := &profile.Location{
		ID:   uint64(len(p.Location) + 1),
		Line: []profile.Line{{Function: fn}},
	}
	p.Location = append(p.Location, loc)
	locs[name] = loc
	return loc
}

func addSample(p *profile.Profile, samples map[string]*profile.Sample, stack []openScope, leaf *profile.Location, value int64) {
	// Sample stacks are leaf first.
	locations := make([]*profile.Location, 0, len(stack)+1)
	locations = append(locations, leaf)
	for i := len(stack) - 1; i >= 0; i-- {
		locations = append(locations, stack[i].loc)
	}

	var key strings.Builder
	for _, loc := range locations {
		key.WriteString(strconv.FormatUint(loc.ID, 10))
		key.WriteByte('/')
	}

	if s, ok := samples[key.String()]; ok {
		s.Value[0] += value
		return
	}
	s := &profile.Sample{
		Location: locations,
		Value:    []int64{value},
	}
	p.Sample = append(p.Sample, s)
	samples[key.String()] = s
}
