package factory

import (
	"errors"
	"testing"
	"time"
)

type sample struct{ A int }

type sampleConf struct {
	A int `json:"a"`
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{A: c.A}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 {
		t.Fatalf("expected 3 got %d", inst.A)
	}
}

// Test duplicate registration and unknown type errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", nil); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if names := reg.Names(); len(names) != 1 || names[0] != "x" {
		t.Fatalf("unexpected names %v", names)
	}
}

type overlayTarget struct {
	Urgent  float64       `json:"urgent"`
	Batch   int           `json:"batch"`
	Resolve bool          `json:"resolve"`
	Horizon time.Duration `json:"horizon"`
}

// Decode keeps fields that are absent from the input and converts strings.
func TestDecodeOverlay(t *testing.T) {
	out := overlayTarget{Urgent: 12, Batch: 1}
	err := Decode(map[string]any{"batch": "3", "resolve": "true", "horizon": "90m"}, &out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := overlayTarget{Urgent: 12, Batch: 3, Resolve: true, Horizon: 90 * time.Minute}
	if out != want {
		t.Fatalf("expected %+v got %+v", want, out)
	}
}

func TestDecodeStrictRejectsUnknownKeys(t *testing.T) {
	var out overlayTarget
	if err := DecodeStrict(map[string]any{"batch": 2, "bacth": 3}, &out); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if err := DecodeStrict(map[string]any{"batch": 2}, &out); err != nil || out.Batch != 2 {
		t.Fatalf("unexpected result %+v, err %v", out, err)
	}
}
