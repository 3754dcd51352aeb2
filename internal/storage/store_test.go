package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
	"github.com/Xterminate1818/fishbowl/internal/calibrate"
	"github.com/Xterminate1818/fishbowl/internal/physics"
)

func testResult() *calibrate.Result {
	opts := physics.DefaultOptions(64, 48, 4, 17)
	opts.Collision = physics.CollisionPair
	colors := []bowl.Color{{R: 1, G: 2, B: 3}, {R: 250, G: 128, B: 0}}
	opts.Colors = colors
	return &calibrate.Result{
		Colors:          colors,
		TotalIterations: 17 + 400,
		MaxParticles:    2,
		Seed:            17,
		Options:         opts,
		History: map[string][]float64{
			"energy": {3, 2, 1.5},
			"empty":  {},
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res := testResult()
	meta := FromCalibration("images/My Photo.png", res)
	meta.Frames = 21
	meta.Backend = "cpu"

	runID, err := st.Save(meta, res.Colors)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.ID != runID {
		t.Errorf("expected id %q, got %q", runID, loaded.ID)
	}
	if loaded.Seed != 17 || loaded.Frames != 21 || loaded.Backend != "cpu" {
		t.Errorf("unexpected metadata %+v", loaded)
	}
	if loaded.Metrics["energy"] != 1.5 {
		t.Errorf("expected final energy 1.5, got %f", loaded.Metrics["energy"])
	}
	if _, ok := loaded.Metrics["empty"]; ok {
		t.Error("expected empty series to be omitted")
	}

	colors, err := st.LoadColors(runID)
	if err != nil {
		t.Fatalf("load colors failed: %v", err)
	}
	if len(colors) != 2 || colors[0] != res.Colors[0] || colors[1] != res.Colors[1] {
		t.Errorf("expected %v, got %v", res.Colors, colors)
	}
}

func TestStoreLoadPlan(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	res := testResult()
	runID, err := st.Save(FromCalibration("in.png", res), res.Colors)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	_, plan, err := st.LoadPlan(runID)
	if err != nil {
		t.Fatalf("load plan failed: %v", err)
	}

	want := res.Plan()
	if plan.TotalIterations != want.TotalIterations || plan.MaxParticles != want.MaxParticles {
		t.Errorf("expected %+v, got %+v", want, plan)
	}
	if got, exp := recordOptions(plan.Options), recordOptions(want.Options); got != exp {
		t.Errorf("expected options %+v, got %+v", exp, got)
	}
	if len(plan.Options.Colors) != 2 || plan.Options.Colors[1] != res.Colors[1] {
		t.Errorf("expected colors restored, got %v", plan.Options.Colors)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	res := testResult()
	first, _ := st.Save(FromCalibration("a.png", res), res.Colors)
	second, _ := st.Save(FromCalibration("b.png", res), res.Colors)

	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadColorsRejectsBadRows(t *testing.T) {
	tmpDir := t.TempDir()
	runDir := filepath.Join(tmpDir, "bad")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := "slot,r,g,b\n0,1,2,300\n"
	if err := os.WriteFile(filepath.Join(runDir, colorsFile), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(tmpDir).LoadColors("bad"); err == nil {
		t.Error("expected error for out-of-range channel")
	}
}

func TestRunName(t *testing.T) {
	tests := map[string]string{
		"images/My Photo.png": "My_Photo",
		"cat.jpeg":            "cat",
		"":                    "run",
	}
	for in, want := range tests {
		if got := runName(in); got != want {
			t.Errorf("runName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	res := testResult()
	meta := FromCalibration("in.png", res)

	if err := ExportJSON(path, meta, res.History); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out ExportData
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.Run.Seed != 17 || len(out.History["energy"]) != 3 {
		t.Errorf("unexpected export %+v", out)
	}
}
