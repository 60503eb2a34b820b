package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/bifsim/internal/analysis"
	"github.com/san-kum/bifsim/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	equilibriaFile = "equilibria.csv"
	branchesFile   = "branches.csv"
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

// Run describes what was swept.
type Run struct {
	Model      string
	Expression string
	RMin, RMax float64
	XMin, XMax float64
}

type RunMetadata struct {
	ID           string                    `json:"id"`
	Model        string                    `json:"model"`
	Expression   string                    `json:"expression"`
	Normalized   string                    `json:"normalized"`
	Derivative   string                    `json:"derivative"`
	Timestamp    time.Time                 `json:"timestamp"`
	RMin         float64                   `json:"r_min"`
	RMax         float64                   `json:"r_max"`
	XMin         float64                   `json:"x_min"`
	XMax         float64                   `json:"x_max"`
	Steps        int                       `json:"steps"`
	Branches     int                       `json:"branches"`
	CriticalR    float64                   `json:"critical_r"`
	Bifurcations []dynamo.BifurcationEvent `json:"bifurcations"`
}

// Save writes a sweep under a new run directory and returns its id.
func (s *Store) Save(run Run, res *dynamo.SweepResult) (string, error) {
	name := run.Model
	if name == "" {
		name = "custom"
	}
	runID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Model:        run.Model,
		Expression:   run.Expression,
		Normalized:   res.Expression,
		Derivative:   res.Derivative,
		Timestamp:    time.Now(),
		RMin:         run.RMin,
		RMax:         run.RMax,
		XMin:         run.XMin,
		XMax:         run.XMax,
		Steps:        len(res.Rs),
		Branches:     len(res.Branches),
		CriticalR:    analysis.CriticalR(res),
		Bifurcations: res.Bifurcations,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, equilibriaFile), func(f *os.File) error {
		return WriteEquilibriaCSV(f, res)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, branchesFile), func(f *os.File) error {
		return WriteBranchesCSV(f, res)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns the metadata of every stored run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

// LoadResult rebuilds the sweep of a stored run.
func (s *Store) LoadResult(runID string) (*dynamo.SweepResult, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	runDir := filepath.Join(s.baseDir, runID)
	res, err := readEquilibria(filepath.Join(runDir, equilibriaFile))
	if err != nil {
		return nil, err
	}
	res.Expression, res.Derivative = meta.Normalized, meta.Derivative
	res.Bifurcations = meta.Bifurcations
	if res.Bifurcations == nil {
		res.Bifurcations = []dynamo.BifurcationEvent{}
	}

	res.Branches, err = readBranches(filepath.Join(runDir, branchesFile), res.Rs)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Latest returns the id of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs in %s", s.baseDir)
	}
	return runs[len(runs)-1].ID, nil
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
