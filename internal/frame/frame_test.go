package frame

import (
	"bytes"
	"reflect"
	"testing"
)

func TestAppendRowGrowsColumns(t *testing.T) {
	f := New()
	f.AppendRow(Row{"a": 1.0})
	f.AppendRow(Row{"a": 2.0, "b": "x"})

	if got := f.Columns(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("columns = %v", got)
	}
	if f.Value(0, "b") != nil {
		t.Fatalf("expected null for early row in late column, got %v", f.Value(0, "b"))
	}
	if f.Value(1, "b") != "x" {
		t.Fatalf("value = %v", f.Value(1, "b"))
	}
}

func TestAppendUnionsColumns(t *testing.T) {
	left := New()
	left.AppendRow(Row{"a": 1.0})
	right := New()
	right.AppendRow(Row{"b": 2.0})

	left.Append(right)
	if left.Len() != 2 {
		t.Fatalf("len = %d", left.Len())
	}
	if got := left.Columns(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("columns = %v", got)
	}
	if left.Value(1, "a") != nil {
		t.Fatalf("expected null, got %v", left.Value(1, "a"))
	}
}

func TestStringsSkipsNulls(t *testing.T) {
	f := New()
	f.AppendRow(Row{"path": "a.wav"})
	f.AppendRow(Row{"path": nil})
	f.AppendRow(Row{"path": "b.wav"})

	if got := f.Strings("path"); !reflect.DeepEqual(got, []string{"a.wav", "b.wav"}) {
		t.Fatalf("strings = %v", got)
	}
}

func TestSelectIntersectsAndOrders(t *testing.T) {
	f := New()
	f.AppendRow(Row{"a": 1.0, "b": 2.0, "c": 3.0})

	got := f.Select("c", "missing", "a", "c")
	if cols := got.Columns(); !reflect.DeepEqual(cols, []string{"c", "a"}) {
		t.Fatalf("columns = %v", cols)
	}
	if got.Value(0, "c") != 3.0 || got.Value(0, "a") != 1.0 {
		t.Fatalf("row = %v %v", got.Value(0, "c"), got.Value(0, "a"))
	}
}

func TestOuterJoinFanOutAndNullFill(t *testing.T) {
	left := New()
	left.AppendRow(Row{"path": "a.wav", "meta": "first"})
	left.AppendRow(Row{"path": "b.wav", "meta": "second"})
	left.AppendRow(Row{"path": "c.wav", "meta": "third"})

	right := New()
	right.AppendRow(Row{"path": "a.wav", "segment": "a_0.wav"})
	right.AppendRow(Row{"path": "a.wav", "segment": "a_1.wav"})
	right.AppendRow(Row{"path": "c.wav", "segment": "c_0.wav"})
	right.AppendRow(Row{"path": "d.wav", "segment": "d_0.wav"})

	joined := left.OuterJoin(right, "path")

	if joined.Len() != 5 {
		t.Fatalf("len = %d", joined.Len())
	}
	// fan-out keeps left order
	if joined.Value(0, "segment") != "a_0.wav" || joined.Value(1, "segment") != "a_1.wav" {
		t.Fatalf("fan-out rows wrong: %v %v", joined.Value(0, "segment"), joined.Value(1, "segment"))
	}
	// unmatched left row survives with nulls
	if joined.Value(2, "path") != "b.wav" || joined.Value(2, "segment") != nil {
		t.Fatalf("unmatched left row wrong: %v %v", joined.Value(2, "path"), joined.Value(2, "segment"))
	}
	// unmatched right row appended last
	if joined.Value(4, "path") != "d.wav" || joined.Value(4, "meta") != nil {
		t.Fatalf("unmatched right row wrong: %v %v", joined.Value(4, "path"), joined.Value(4, "meta"))
	}
}

func TestOuterJoinNullKeysNeverMatch(t *testing.T) {
	left := New()
	left.AppendRow(Row{"path": nil, "meta": "left"})
	right := New()
	right.AppendRow(Row{"path": nil, "segment": "orphan"})

	joined := left.OuterJoin(right, "path")
	if joined.Len() != 2 {
		t.Fatalf("len = %d, null keys must not match", joined.Len())
	}
}

func TestOuterJoinRightValueWins(t *testing.T) {
	left := New()
	left.AppendRow(Row{"path": "a.wav", "shared": "old"})
	right := New()
	right.AppendRow(Row{"path": "a.wav", "shared": "new"})

	joined := left.OuterJoin(right, "path")
	if joined.Value(0, "shared") != "new" {
		t.Fatalf("shared = %v", joined.Value(0, "shared"))
	}
}

func TestCSVRoundTrip(t *testing.T) {
	f := New()
	f.AppendRow(Row{"path": "a.wav", "score": 0.5, "label": nil})
	f.AppendRow(Row{"path": "b.wav", "score": nil, "label": "voice"})

	var buf bytes.Buffer
	if err := f.WriteCSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if back.Len() != 2 {
		t.Fatalf("len = %d", back.Len())
	}
	if back.Value(0, "score") != 0.5 {
		t.Fatalf("score = %v", back.Value(0, "score"))
	}
	if back.Value(0, "label") != nil || back.Value(1, "score") != nil {
		t.Fatalf("nulls did not survive the round trip")
	}
	if back.Value(1, "label") != "voice" {
		t.Fatalf("label = %v", back.Value(1, "label"))
	}
}

func TestDropColumnsFunc(t *testing.T) {
	f := New()
	f.AppendRow(Row{"keep": 1.0, "Unnamed: 0": 0.0})
	f.DropColumnsFunc(func(name string) bool { return name != "keep" })

	if got := f.Columns(); !reflect.DeepEqual(got, []string{"keep"}) {
		t.Fatalf("columns = %v", got)
	}
	if f.Value(0, "Unnamed: 0") != nil {
		t.Fatalf("dropped column still readable")
	}
}
