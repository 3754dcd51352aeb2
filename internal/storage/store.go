package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
	"github.com/Xterminate1818/fishbowl/internal/calibrate"
	"github.com/Xterminate1818/fishbowl/internal/physics"
	"github.com/Xterminate1818/fishbowl/internal/sequence"
)

const (
	metadataFile = "metadata.json"
	colorsFile   = "colors.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// PhysicsRecord persists the engine options that reproduce a calibration.
type PhysicsRecord struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Radius         float64 `json:"radius"`
	RadiusVariance float64 `json:"radius_variance"`
	Seed           int     `json:"seed"`
	Substeps       int     `json:"substeps"`
	Timescale      float64 `json:"timescale"`
	Gravity        float64 `json:"gravity"`
	Response       float64 `json:"response"`
	Collision      string  `json:"collision"`
}

func recordOptions(o physics.Options) PhysicsRecord {
	return PhysicsRecord{
		Width:          o.Width,
		Height:         o.Height,
		Radius:         o.Radius,
		RadiusVariance: o.RadiusVariance,
		Seed:           o.Seed,
		Substeps:       o.Substeps,
		Timescale:      o.Timescale,
		Gravity:        o.Gravity,
		Response:       o.Response,
		Collision:      o.Collision.String(),
	}
}

func (r PhysicsRecord) Options() (physics.Options, error) {
	mode, ok := physics.ParseCollisionMode(r.Collision)
	if !ok {
		return physics.Options{}, fmt.Errorf("%w: unknown collision mode %q", bowl.ErrParameterBounds, r.Collision)
	}
	return physics.Options{
		Width:          r.Width,
		Height:         r.Height,
		Radius:         r.Radius,
		RadiusVariance: r.RadiusVariance,
		Seed:           r.Seed,
		Substeps:       r.Substeps,
		Timescale:      r.Timescale,
		Gravity:        r.Gravity,
		Response:       r.Response,
		Collision:      mode,
	}, nil
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Input           string             `json:"input"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            int                `json:"seed"`
	TotalIterations int                `json:"total_iterations"`
	MaxParticles    int                `json:"max_particles"`
	Frames          int                `json:"frames"`
	Stride          int                `json:"stride"`
	Backend         string             `json:"backend"`
	Output          string             `json:"output,omitempty"`
	CalibrationMS   int64              `json:"calibration_ms"`
	RenderMS        int64              `json:"render_ms"`
	Physics         PhysicsRecord      `json:"physics"`
	Metrics         map[string]float64 `json:"metrics"`
}

// FromCalibration fills the calibration fields of a run record. Metrics
// hold the final value of each recorded series.
func FromCalibration(input string, res *calibrate.Result) RunMetadata {
	metrics := make(map[string]float64, len(res.History))
	for name, series := range res.History {
		if len(series) > 0 {
			metrics[name] = series[len(series)-1]
		}
	}
	return RunMetadata{
		Input:           input,
		Seed:            res.Seed,
		TotalIterations: res.TotalIterations,
		MaxParticles:    res.MaxParticles,
		CalibrationMS:   res.Elapsed.Milliseconds(),
		Physics:         recordOptions(res.Options),
		Metrics:         metrics,
	}
}

var unsafeID = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func runName(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	base = unsafeID.ReplaceAllString(base, "_")
	if base == "" || base == "_" {
		return "run"
	}
	return base
}

// Save writes metadata.json and colors.csv under a new run directory and
// returns the run ID.
func (s *Store) Save(meta RunMetadata, colors []bowl.Color) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", runName(meta.Input), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, colorsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"slot", "r", "g", "b"}); err != nil {
		return "", err
	}
	for slot, c := range colors {
		row := []string{
			strconv.Itoa(slot),
			strconv.Itoa(int(c.R)),
			strconv.Itoa(int(c.G)),
			strconv.Itoa(int(c.B)),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns stored runs, newest first. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadColors(runID string) ([]bowl.Color, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, colorsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []bowl.Color{}, nil
	}

	colors := make([]bowl.Color, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != 4 {
			return nil, fmt.Errorf("colors.csv line %d: want 4 fields, got %d", i+2, len(record))
		}
		slot, err := strconv.Atoi(record[0])
		if err != nil || slot < 0 || slot >= len(colors) {
			return nil, fmt.Errorf("colors.csv line %d: bad slot %q", i+2, record[0])
		}
		var rgb [3]uint8
		for j := range rgb {
			v, err := strconv.ParseUint(record[j+1], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("colors.csv line %d: %w", i+2, err)
			}
			rgb[j] = uint8(v)
		}
		colors[slot] = bowl.Color{R: rgb[0], G: rgb[1], B: rgb[2]}
	}
	return colors, nil
}

// LoadPlan rebuilds a replay plan from a stored calibration.
func (s *Store) LoadPlan(runID string) (*RunMetadata, sequence.Plan, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, sequence.Plan{}, err
	}
	colors, err := s.LoadColors(runID)
	if err != nil {
		return nil, sequence.Plan{}, err
	}
	opts, err := meta.Physics.Options()
	if err != nil {
		return nil, sequence.Plan{}, err
	}
	opts.Colors = colors

	return meta, sequence.Plan{
		Options:         opts,
		TotalIterations: meta.TotalIterations,
		MaxParticles:    meta.MaxParticles,
	}, nil
}
