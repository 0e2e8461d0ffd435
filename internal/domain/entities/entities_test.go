package entities

import (
	"encoding/json"
	"errors"
	"io/fs"
	"testing"
)

func TestEntry_LegacySingleShape(t *testing.T) {
	var e Entry
	raw := `{"timestamp":1700000000000,"screenshot":"screenshot-1.png","response":"hi"}`
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if e.Mode != ModeSingle {
		t.Errorf("expected single mode, got %q", e.Mode)
	}
	if e.Primary() != "hi" {
		t.Errorf("unexpected primary text: %s", e.Primary())
	}
}

func TestEntry_LegacyTwoStageShape(t *testing.T) {
	var e Entry
	raw := `{"timestamp":1,"screenshot":"a.png","problemDescription":"sum two ints","solution":"a+b"}`
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if e.Mode != ModeTwoStage {
		t.Errorf("expected two_stage mode, got %q", e.Mode)
	}
	if e.Primary() != "sum two ints" {
		t.Errorf("unexpected primary text: %s", e.Primary())
	}
}

func TestEntry_ExplicitModeKept(t *testing.T) {
	var e Entry
	raw := `{"timestamp":1,"screenshot":"a.png","mode":"two_stage","solution":"x"}`
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if e.Mode != ModeTwoStage {
		t.Errorf("expected two_stage, got %q", e.Mode)
	}
}

func TestEntry_RoundTripIsStable(t *testing.T) {
	e := Entry{Timestamp: 42, Screenshot: "s.png", Mode: ModeSingle, Response: "r"}
	first, _ := json.Marshal(e)

	var back Entry
	if err := json.Unmarshal(first, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	second, _ := json.Marshal(back)
	if string(first) != string(second) {
		t.Errorf("round trip changed bytes:\n%s\n%s", first, second)
	}
}

func TestEntry_Sections(t *testing.T) {
	single := Entry{Mode: ModeSingle, Response: "r"}
	if s := single.Sections(); len(s) != 1 || s[0].Title != "Response" {
		t.Errorf("unexpected single sections: %+v", s)
	}

	two := Entry{Mode: ModeTwoStage, ProblemDescription: "p", Solution: "s"}
	s := two.Sections()
	if len(s) != 2 || s[0].Text != "p" || s[1].Title != "Solution" {
		t.Errorf("unexpected two-stage sections: %+v", s)
	}
}

func TestEntry_CreatedAt(t *testing.T) {
	e := Entry{Timestamp: 1700000000123}
	if e.CreatedAt().UnixMilli() != 1700000000123 {
		t.Errorf("unexpected time: %v", e.CreatedAt())
	}
}

func TestErrors_Unwrap(t *testing.T) {
	err := error(&StorageError{Op: "read", Path: "x.json", Err: fs.ErrNotExist})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("storage error should unwrap to its cause")
	}

	var up *UpstreamError
	wrapped := errors.Join(errors.New("ctx"), &UpstreamError{Model: "m", Status: 500, Message: "boom"})
	if !errors.As(wrapped, &up) {
		t.Fatal("expected UpstreamError via errors.As")
	}
	if up.Status != 500 {
		t.Errorf("unexpected status %d", up.Status)
	}
	if got := up.Error(); got != "upstream m: status 500: boom" {
		t.Errorf("unexpected message: %s", got)
	}
}
