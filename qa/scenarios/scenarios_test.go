package scenarios

import (
	"path/filepath"
	"testing"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestEventDefRejectsBadInput(t *testing.T) {
	day, _ := Scenario{}.Day()
	if _, err := (EventDef{Direction: "up", At: "10:00"}).ToModel(day); err == nil {
		t.Fatal("expected direction error")
	}
	if _, err := (EventDef{Direction: "to_a", At: "ten"}).ToModel(day); err == nil {
		t.Fatal("expected time error")
	}
}
