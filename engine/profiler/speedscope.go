// Package profiler records nested timing scopes and exports them in the
// speedscope evented format. Recording is compiled in only with the
// "profile" build tag.
package profiler

import (
	"encoding/json"
	"errors"
	"os"
	"runtime"
)

var (
	ErrDisabled = errors.New("profiler: built without the profile tag")
	ErrNoEvents = errors.New("profiler: no events captured")
)

type event struct {
	at    int64 // unix ns
	scope int
	open  bool
}

type ssDoc struct {
	Schema   string      `json:"$schema"`
	Shared   ssShared    `json:"shared"`
	Profiles []ssProfile `json:"profiles"`
	Exporter string      `json:"exporter,omitempty"`
	Name     string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"` // "O" or "C"
	At    int64  `json:"at"`   // µs since the first event
	Frame int    `json:"frame"`
}

// speedscope converts events in write order into one evented profile.
// Closes without a matching open are dropped and scopes still open at the
// end are closed at the last timestamp.
func speedscope(evs []event, scopes []string) (ssDoc, error) {
	if len(evs) == 0 {
		return ssDoc{}, ErrNoEvents
	}
	frames := make([]ssFrame, len(scopes))
	for i, s := range scopes {
		frames[i] = ssFrame{Name: s}
	}

	base := evs[0].at
	out := make([]ssEvent, 0, len(evs)+8)
	stack := make([]int, 0, 32)
	last := int64(0)
	for _, e := range evs {
		at := (e.at - base) / 1000
		if at < last {
			at = last
		}
		if e.open {
			stack = append(stack, e.scope)
			out = append(out, ssEvent{Type: "O", At: at, Frame: e.scope})
		} else {
			if len(stack) == 0 || stack[len(stack)-1] != e.scope {
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, ssEvent{Type: "C", At: at, Frame: e.scope})
		}
		last = at
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, ssEvent{Type: "C", At: last, Frame: stack[i]})
	}
	if len(out) == 0 {
		return ssDoc{}, ErrNoEvents
	}

	return ssDoc{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: frames},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     "frames",
			Unit:     "microseconds",
			EndValue: last,
			Events:   out,
		}},
		Exporter: "grove-vk",
		Name:     "grove-vk capture",
	}, nil
}

// writeJSON replaces path atomically.
func writeJSON(path string, doc ssDoc) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// RuntimeStats is a point-in-time view of the Go runtime.
type RuntimeStats struct {
	HeapAlloc  uint64
	Mallocs    uint64
	Goroutines int
	CPUs       int
}

func Runtime() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		HeapAlloc:  m.Alloc,
		Mallocs:    m.Mallocs,
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
	}
}
