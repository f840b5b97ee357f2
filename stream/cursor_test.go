package stream

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func record(seq uint64, data string) *Record {
	return &Record{Seq: seq, Data: []byte(data), CRC: ComputeCRC([]byte(data))}
}

func TestCursor_Basic(t *testing.T) {
	cursor := NewCursor()

	// Get creates state
	state := cursor.Get("a")
	if state.Name != "a" {
		t.Errorf("Name = %q, want a", state.Name)
	}
	if state.LastSeq != 0 {
		t.Errorf("LastSeq = %d, want 0", state.LastSeq)
	}

	// Lookup does not create
	if _, ok := cursor.Lookup("zz"); ok {
		t.Error("Lookup should report unknown stream")
	}

	// Names
	cursor.Get("c")
	cursor.Get("b")
	names := cursor.Names()
	if fmt.Sprint(names) != "[a b c]" {
		t.Errorf("Names = %v, want [a b c]", names)
	}

	// Delete
	cursor.Delete("b")
	if _, ok := cursor.Lookup("b"); ok {
		t.Error("Delete should remove stream")
	}
}

func TestCursor_Process(t *testing.T) {
	cursor := NewCursor()

	// First record
	if err := cursor.Process("a", record(1, "{}")); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	state := cursor.Get("a")
	if state.LastSeq != 1 || state.Records != 1 || state.Bytes != 2 {
		t.Errorf("state = %+v", state)
	}

	// Gap counts skipped positions
	if err := cursor.Process("a", record(4, "[1]")); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	state = cursor.Get("a")
	if state.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", state.Skipped)
	}
	if state.Records != 2 {
		t.Errorf("Records = %d, want 2", state.Records)
	}

	// Duplicate should fail
	err := cursor.Process("a", record(4, "[1]"))
	var serr *SequenceError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SequenceError, got %v", err)
	}
	if serr.Last != 4 || serr.Got != 4 {
		t.Errorf("SequenceError = %+v", serr)
	}
}

func TestCursor_CRC(t *testing.T) {
	cursor := NewCursor()
	cursor.Process("a", record(1, "1"))
	cursor.Process("a", record(2, "2"))

	if err := cursor.Verify("a", ComputeCRC([]byte("12"))); err != nil {
		t.Errorf("Verify failed: %v", err)
	}

	err := cursor.Verify("a", 0xdeadbeef)
	var cerr *CRCMismatchError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CRCMismatchError, got %v", err)
	}

	if err := cursor.Verify("nope", 0); err == nil {
		t.Error("expected error for unknown stream")
	}

	// A record whose data no longer matches its CRC is refused
	rec := record(3, "3")
	rec.Data = []byte("4")
	if err := cursor.Process("a", rec); !errors.As(err, &cerr) {
		t.Errorf("expected CRCMismatchError, got %v", err)
	}
	if got := cursor.Get("a").LastSeq; got != 2 {
		t.Errorf("LastSeq = %d, want 2", got)
	}
}

func TestCursor_Finish(t *testing.T) {
	cursor := NewCursor()
	cursor.Process("a", record(1, "1"))

	state := cursor.Finish("a", 3)
	if !state.Final {
		t.Error("Final should be true")
	}
	if state.Skipped != 2 || state.LastSeq != 3 {
		t.Errorf("state = %+v", state)
	}

	if err := cursor.Process("a", record(4, "4")); err == nil {
		t.Error("expected error after end of stream")
	}
}

func TestCursor_Concurrent(t *testing.T) {
	cursor := NewCursor()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for seq := uint64(1); seq <= 100; seq++ {
				if err := cursor.Process(name, record(seq, "x")); err != nil {
					t.Errorf("Process(%s, %d): %v", name, seq, err)
					return
				}
			}
		}(fmt.Sprintf("s%d", i))
	}
	wg.Wait()

	for _, name := range cursor.Names() {
		if got := cursor.Get(name).Records; got != 100 {
			t.Errorf("%s: Records = %d, want 100", name, got)
		}
	}
	if len(cursor.Names()) != 8 {
		t.Errorf("Names = %d, want 8", len(cursor.Names()))
	}
}
