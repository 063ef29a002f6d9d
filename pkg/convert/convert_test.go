package convert

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/event"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/wire"
)

func testTrace() *wire.Trace {
	return &wire.Trace{
		Definitions: []wire.Definition{
			{WireID: 100, Class: event.ClassScoped, Name: "Render#Frame"},
			{WireID: 101, Class: event.ClassScoped, Name: "Render#Draw"},
			{WireID: 102, Class: event.ClassInstance, Name: "Render#Mark"},
		},
		Threads: []wire.Thread{
			{
				ID:   1,
				Name: "T1",
				Events: []wire.Event{
					{WireID: 100, Name: "Render#Frame", Class: event.ClassScoped, Time: 100},
					{WireID: 101, Name: "Render#Draw", Class: event.ClassScoped, Time: 110},
					{WireID: 102, Name: "Render#Mark", Time: 120, Args: []wire.ArgValue{
						{Name: "i", Type: "int32", Raw: 7},
					}},
					{WireID: event.WireIDScopeLeave, Name: "wtf.scope#leave", Time: 140},
					{WireID: event.WireIDScopeLeave, Name: "wtf.scope#leave", Time: 200},
				},
			},
		},
	}
}

func TestToChrome(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ToChrome(testTrace(), &out))

	var decoded struct {
		TraceEvents []struct {
			Name  string         `json:"name"`
			Phase string         `json:"ph"`
			TID   uint32         `json:"tid"`
			TS    uint32         `json:"ts"`
			Args  map[string]any `json:"args"`
		} `json:"traceEvents"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))

	require.Len(t, decoded.TraceEvents, 6)

	meta := decoded.TraceEvents[0]
	require.Equal(t, "M", meta.Phase)
	require.Equal(t, "thread_name", meta.Name)
	require.Equal(t, "T1", meta.Args["name"])

	require.Equal(t, "B", decoded.TraceEvents[1].Phase)
	require.Equal(t, "Render#Frame", decoded.TraceEvents[1].Name)
	require.Equal(t, "B", decoded.TraceEvents[2].Phase)

	mark := decoded.TraceEvents[3]
	require.Equal(t, "i", mark.Phase)
	require.Equal(t, float64(7), mark.Args["i"])

	require.Equal(t, "E", decoded.TraceEvents[4].Phase)
	require.Equal(t, "E", decoded.TraceEvents[5].Phase)
}

func TestToPprof(t *testing.T) {
	p, err := ToPprof(testTrace())
	require.NoError(t, err)
	require.NoError(t, p.CheckValid())

	require.Equal(t, "wall", p.SampleType[0].Type)
	require.Len(t, p.Sample, 2)

	byLeaf := make(map[string]*profileSample)
	for _, s := range p.Sample {
		names := make([]string, 0, len(s.Location))
		for _, loc := range s.Location {
			names = append(names, loc.Line[0].Function.Name)
		}
		byLeaf[names[0]] = &profileSample{stack: names, value: s.Value[0]}
	}

	// Draw ran 110..140 with no children.
	draw := byLeaf["Render#Draw"]
	require.NotNil(t, draw)
	require.Equal(t, []string{"Render#Draw", "Render#Frame"}, draw.stack)
	require.Equal(t, int64(30), draw.value)

	// Frame ran 100..200, minus 30us spent in Draw.
	frame := byLeaf["Render#Frame"]
	require.NotNil(t, frame)
	require.Equal(t, []string{"Render#Frame"}, frame.stack)
	require.Equal(t, int64(70), frame.value)
}

type profileSample struct {
	stack []string
	value int64
}

func TestToPprofUnbalancedLeave(t *testing.T) {
	trace := &wire.Trace{
		Threads: []wire.Thread{
			{
				ID: 1,
				Events: []wire.Event{
					{WireID: event.WireIDScopeLeave, Time: 10},
				},
			},
		},
	}
	_, err := ToPprof(trace)
	require.Error(t, err)
}
