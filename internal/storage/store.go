// Package storage persists completed runs: one directory per run with a
// metadata.json summary and a trajectory.csv of coordinates, speeds, and
// the constraint violation norm.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/kinetree/internal/runner"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	MaxPerr    float64            `json:"max_perr"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics"`
}

func (s *Store) Save(sceneName string, dt, duration float64, integrator string, result *runner.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", sceneName, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      sceneName,
		Timestamp:  time.Now(),
		Dt:         dt,
		Duration:   duration,
		Integrator: integrator,
		MaxPerr:    result.MaxPerr,
		Steps:      result.StepsTaken,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.Samples) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for i := range result.Samples[0].Q {
		header = append(header, fmt.Sprintf("q%d", i))
	}
	for i := range result.Samples[0].U {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	header = append(header, "perr")
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, sample := range result.Samples {
		row := []string{strconv.FormatFloat(sample.T, 'f', 6, 64)}
		for _, v := range sample.Q {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		for _, v := range sample.U {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		row = append(row, strconv.FormatFloat(sample.PerrNorm, 'g', -1, 64))
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

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
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads a saved run back as samples. Column counts come
// from the header: time, nq coordinates, nu speeds, perr.
func (s *Store) LoadTrajectory(runID string) ([]runner.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []runner.Sample{}, nil
	}

	header := records[0]
	nq, nu := 0, 0
	for _, col := range header {
		switch {
		case len(col) > 1 && col[0] == 'q':
			nq++
		case len(col) > 1 && col[0] == 'u':
			nu++
		}
	}
	if len(header) != 2+nq+nu {
		return nil, fmt.Errorf("storage: malformed trajectory header %v", header)
	}

	samples := make([]runner.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("storage: row has %d fields, header has %d", len(record), len(header))
		}
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			vals[j] = v
		}
		samples = append(samples, runner.Sample{
			T:        vals[0],
			Q:        vals[1 : 1+nq],
			U:        vals[1+nq : 1+nq+nu],
			PerrNorm: vals[1+nq+nu],
		})
	}
	return samples, nil
}
