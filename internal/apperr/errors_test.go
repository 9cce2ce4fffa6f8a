package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorSerializesKindAndMessage(t *testing.T) {
	err := New(KindFileRead, "not found")
	b, jerr := json.Marshal(err)
	if jerr != nil {
		t.Fatalf("marshal: %v", jerr)
	}
	var body map[string]string
	if err := json.Unmarshal(b, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["kind"] != "FileRead" {
		t.Fatalf("kind=%q", body["kind"])
	}
	if !strings.Contains(body["message"], "not found") {
		t.Fatalf("message=%q", body["message"])
	}
}

func TestAllKindsSerialize(t *testing.T) {
	for _, k := range Kinds {
		b, err := json.Marshal(New(k, "x"))
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if !strings.Contains(string(b), `"kind":"`+string(k)+`"`) {
			t.Fatalf("%s: body=%s", k, b)
		}
	}
}

func TestWrapKeepsCauseAndKind(t *testing.T) {
	err := Wrap(KindFileRead, fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("cause lost: %v", err)
	}
	if !IsFileRead(err) {
		t.Fatalf("kind lost: %v", err)
	}
	// Rewrapping an apperr keeps the inner kind.
	again := Wrap(KindGeneral, err)
	if KindOf(again) != KindFileRead {
		t.Fatalf("kind=%s", KindOf(again))
	}
	if Wrap(KindGeneral, nil) != nil {
		t.Fatalf("wrap nil should be nil")
	}
}

func TestKindOfThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", ModelNotFound("u2net"))
	if !IsModelNotFound(err) {
		t.Fatalf("expected model not found through wrap")
	}
	if KindOf(errors.New("plain")) != KindGeneral {
		t.Fatalf("foreign errors should be General")
	}
}
