package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/adalharness/internal/logcapture"
)

// LogSnapshot is the golden-file form of a sink: every part's texts in
// order, plus the interleaved global sequence.
type LogSnapshot struct {
	Name    string              `json:"name"`
	Parts   map[string][]string `json:"parts"`
	Records []SnapshotRecord    `json:"records"`
}

// SnapshotRecord is one record in a LogSnapshot.
type SnapshotRecord struct {
	Seq  int64  `json:"seq"`
	Part string `json:"part"`
	Text string `json:"text"`
}

// NewLogSnapshot captures the current contents of sink.
func NewLogSnapshot(name string, sink *logcapture.Sink) LogSnapshot {
	snap := LogSnapshot{
		Name:    name,
		Parts:   make(map[string][]string, len(logcapture.Parts)),
		Records: []SnapshotRecord{},
	}
	for _, p := range logcapture.Parts {
		snap.Parts[p.String()] = []string{}
	}
	for _, rec := range sink.Records() {
		key := rec.Part.String()
		snap.Parts[key] = append(snap.Parts[key], rec.Text)
		snap.Records = append(snap.Records, SnapshotRecord{Seq: rec.Seq, Part: key, Text: rec.Text})
	}
	return snap
}

// MarshalSnapshot renders a snapshot as indented JSON with a trailing
// newline. Map keys are sorted by encoding/json, so output is stable.
func MarshalSnapshot(snap LogSnapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// AssertLogsGolden compares the harness's captured logs against
// {golden_dir}/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
func AssertLogsGolden(t *testing.T, h *Harness, name string) {
	t.Helper()

	data, err := MarshalSnapshot(NewLogSnapshot(name, h.sink))
	if err != nil {
		t.Fatalf("marshal log snapshot: %v", err)
	}

	dir := h.cfg.GoldenDir
	if dir == "" {
		dir = DefaultConfig().GoldenDir
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(dir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
