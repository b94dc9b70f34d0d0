package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.json"
	posesFile    = "poses.csv"
)

var ErrRunNotFound = errors.New("run not found")

type Store struct {
	baseDir string
	logger  *zap.SugaredLogger
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, logger: zap.NewNop().Sugar()}
}

func (s *Store) WithLogger(l *zap.SugaredLogger) *Store {
	s.logger = l
	return s
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo is what the caller knows about a run beyond its output.
type RunInfo struct {
	Name       string
	Source     string
	Integrator string
	Controller string
	SimLength  sim.Length
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Source     string             `json:"source,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	SimLength  string             `json:"sim_length"`
	Ticks      int                `json:"ticks"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Physical   robot.Physical     `json:"physical"`
	Final      robot.Pose         `json:"final"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding the metadata, the full trace and a CSV
// of poses, and returns the run id.
func (s *Store) Save(info RunInfo, out *sim.Output[any]) (string, error) {
	if out == nil || len(out.States) == 0 {
		return "", fmt.Errorf("save %s: empty trace", info.Name)
	}
	now := time.Now()
	runID, runDir, err := s.mkRunDir(info.Name, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       info.Name,
		Source:     info.Source,
		Timestamp:  now,
		Dt:         out.DeltaTime.Seconds(),
		SimLength:  info.SimLength.String(),
		Ticks:      out.Ticks(),
		Integrator: info.Integrator,
		Controller: info.Controller,
		Physical:   out.Physical,
		Final:      out.Final().Pose(),
		Metrics:    out.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta, true); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, traceFile), out, false); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, posesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteCSV(f, out); err != nil {
		return "", err
	}

	s.logger.Debugw("saved run", "id", runID, "ticks", meta.Ticks, "dir", runDir)
	return runID, nil
}

// mkRunDir creates a fresh directory for the run. Concurrent saves of the
// same name within one clock tick get numbered suffixes.
func (s *Store) mkRunDir(name string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	for i := 0; i < 1000; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s-%d", base, i)
		}
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
	return "", "", fmt.Errorf("no free run directory for %s", base)
}

func writeJSON(path string, v interface{}, indent bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, v, indent)
}

// List returns the metadata of every readable run, newest first.
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
			s.logger.Debugw("skipping run", "dir", entry.Name(), "error", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := s.read(runID, metadataFile)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

// LoadOutput reads the trace back. Controller state is left as raw JSON since
// its shape depends on the controller that produced it.
func (s *Store) LoadOutput(runID string) (*sim.Output[json.RawMessage], error) {
	data, err := s.read(runID, traceFile)
	if err != nil {
		return nil, err
	}

	var out sim.Output[json.RawMessage]
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &out, nil
}

// LoadPoses reads the CSV side file, which is much cheaper than the trace
// when only the path is needed.
func (s *Store) LoadPoses(runID string) ([]robot.Pose, []float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, posesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func (s *Store) read(runID, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return data, err
}
