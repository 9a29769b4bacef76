package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Format is the on-disk encoding of events.
type Format uint8

const (
	FormatAuto   Format = iota // by output path: .ndjson, .json, else text
	FormatText
	FormatNDJSON
	FormatChrome // elements of a chrome://tracing traceEvents array
)

// FormatEvent encodes one event. Text and NDJSON include the newline;
// Chrome elements do not, the stream sink joins them.
func FormatEvent(ev *Event, format Format) []byte {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatNDJSON:
		data, err = json.Marshal(toJSON(ev))
		data = append(data, '\n')
	case FormatChrome:
		data, err = json.Marshal(toChrome(ev))
	default:
		return []byte(textLine(ev))
	}
	if err != nil {
		return nil
	}
	return data
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func toJSON(ev *Event) jsonEvent {
	return jsonEvent{
		Time:     ev.Time.UTC().Format("2006-01-02T15:04:05.000000Z"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	}
}

type chromeEvent struct {
	Name  string            `json:"name"`
	Cat   string            `json:"cat"`
	Ph    string            `json:"ph"`
	Ts    int64             `json:"ts"`
	Pid   int               `json:"pid"`
	Tid   uint64            `json:"tid"`
	Scope string            `json:"s,omitempty"`
	Args  map[string]string `json:"args,omitempty"`
}

// Each span gets its own lane (tid = span id) since probes overlap in time
// and B/E pairs must nest per lane. Instants go to their parent's lane.
func toChrome(ev *Event) chromeEvent {
	c := chromeEvent{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		Ts:   ev.Time.UnixMicro(),
		Pid:  1,
		Tid:  ev.SpanID,
		Ph:   "i",
	}
	switch ev.Kind {
	case KindSpanBegin:
		c.Ph = "B"
	case KindSpanEnd:
		c.Ph = "E"
	default:
		c.Tid = ev.ParentID
		c.Scope = "t"
	}
	if ev.Detail != "" || len(ev.Extra) > 0 {
		c.Args = maps.Clone(ev.Extra)
		if c.Args == nil {
			c.Args = make(map[string]string, 1)
		}
		if ev.Detail != "" {
			c.Args["detail"] = ev.Detail
		}
	}
	return c
}

var kindMarks = map[Kind]string{
	KindSpanBegin: ">",
	KindSpanEnd:   "<",
	KindPoint:     "*",
	KindHeartbeat: "~",
}

// textLine: "#seq scope mark name [detail] k=v ...", children indented.
func textLine(ev *Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%-6d %-6s ", ev.Seq, ev.Scope)
	if ev.ParentID != 0 {
		sb.WriteString("  ")
	}
	mark, ok := kindMarks[ev.Kind]
	if !ok {
		mark = "?"
	}
	sb.WriteString(mark)
	sb.WriteByte(' ')
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " [%s]", ev.Detail)
	}
	for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
		fmt.Fprintf(&sb, " %s=%s", k, ev.Extra[k])
	}
	sb.WriteByte('\n')
	return sb.String()
}
