// Package corpus persists differential outcomes into a three-bucket corpus:
// stable (all adapters agreed), divergences, and minimized crash reports.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/protocol-parity/parity-go/internal/analysis"
	"github.com/protocol-parity/parity-go/internal/domain"
)

// ErrDirectoryNotFound reports a missing corpus bucket directory.
var ErrDirectoryNotFound = errors.New("corpus directory not found")

// EnvBaseDir is the environment variable naming the corpus base directory.
const EnvBaseDir = "ARTIFACT_DIR"

const defaultBaseDir = "/corpus_data"

// DefaultEssentialParams are parameter keys the minimizer always keeps.
// The list is protocol-specific configuration, not a minimality algorithm.
var DefaultEssentialParams = []string{"amount_msat", "description", "peer_id", "id"}

// Manager owns the corpus directory tree. Writes for distinct case ids are
// safe to parallelize; the manager takes no lock per id, so callers must
// serialize writes of the same id or accept last-writer-wins.
type Manager struct {
	baseDir        string
	stableDir      string
	divergencesDir string
	crashesDir     string

	essentialParams map[string]struct{}
	now             func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithEssentialParams overrides the minimizer's keep-always key list.
func WithEssentialParams(keys []string) Option {
	return func(m *Manager) {
		m.essentialParams = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			m.essentialParams[k] = struct{}{}
		}
	}
}

// New creates a Manager rooted at baseDir, creating the bucket directories.
func New(baseDir string, opts ...Option) (*Manager, error) {
	m := &Manager{
		baseDir:        baseDir,
		stableDir:      filepath.Join(baseDir, "stable"),
		divergencesDir: filepath.Join(baseDir, "divergences"),
		crashesDir:     filepath.Join(baseDir, "crashes"),
		now:            time.Now,
	}
	WithEssentialParams(DefaultEssentialParams)(m)
	for _, opt := range opts {
		opt(m)
	}

	for _, dir := range []string{m.stableDir, m.divergencesDir, m.crashesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("corpus: create %s: %w", dir, err)
		}
	}
	return m, nil
}

// FromEnv creates a Manager at $ARTIFACT_DIR (default /corpus_data).
func FromEnv(opts ...Option) (*Manager, error) {
	baseDir := os.Getenv(EnvBaseDir)
	if baseDir == "" {
		baseDir = defaultBaseDir
	}
	return New(baseDir, opts...)
}

// CaseID derives a deterministic 16-hex-character id from the case's method
// name and parameters. json.Marshal sorts object keys, so the rendering is
// independent of map iteration order and process restarts.
func CaseID(c *domain.FuzzCase) string {
	params, _ := json.Marshal(c.Parameters) // safe: validated JSON values
	h := sha256.Sum256(append([]byte(c.MethodName), params...))
	return hex.EncodeToString(h[:])[:16]
}

// Stats counts the corpus entries per bucket.
type Stats struct {
	StableCases int `json:"stable_cases"`
	Divergences int `json:"divergences"`
	Crashes     int `json:"crashes"`
	TotalCases  int `json:"total_cases"`
}

type stableRecord struct {
	CaseID         string              `json:"case_id"`
	FuzzCase       domain.FuzzCase     `json:"fuzz_case"`
	AdapterResults []domain.FuzzResult `json:"adapter_results"`
	Equivalent     bool                `json:"equivalent"`
	Summary        string              `json:"summary"`
	PromotedAt     string              `json:"promoted_at"`
}

type divergenceRecord struct {
	CaseID         string                `json:"case_id"`
	FuzzCase       domain.FuzzCase       `json:"fuzz_case"`
	AdapterResults []domain.FuzzResult   `json:"adapter_results"`
	Differences    []analysis.Difference `json:"differences"`
	Equivalent     bool                  `json:"equivalent"`
	Summary        string                `json:"summary"`
	RecordedAt     string                `json:"recorded_at"`
}

type crashRecord struct {
	CaseID         string                `json:"case_id"`
	OriginalCase   domain.FuzzCase       `json:"original_case"`
	MinimizedCase  domain.FuzzCase       `json:"minimized_case"`
	AdapterResults []domain.FuzzResult   `json:"adapter_results"`
	Differences    []analysis.Difference `json:"differences"`
	MinimizedAt    string                `json:"minimized_at"`
}

// ProcessResult persists a differential outcome: equivalent results are
// promoted to the stable corpus, everything else is recorded as a
// divergence plus a minimized crash report. A failed write aborts only
// this case's persistence, never the run.
func (m *Manager) ProcessResult(result *analysis.DifferentialResult) error {
	if result.Equivalent {
		return m.promoteToStable(result)
	}
	if err := m.recordDivergence(result); err != nil {
		return err
	}
	return m.recordCrash(result)
}

func (m *Manager) promoteToStable(result *analysis.DifferentialResult) error {
	caseID := CaseID(&result.FuzzCase)
	record := stableRecord{
		CaseID:         caseID,
		FuzzCase:       result.FuzzCase,
		AdapterResults: result.AdapterResults,
		Equivalent:     true,
		Summary:        result.Summary,
		PromotedAt:     m.now().UTC().Format(time.RFC3339),
	}
	return m.writeRecord(m.stableDir, caseID, record)
}

func (m *Manager) recordDivergence(result *analysis.DifferentialResult) error {
	caseID := CaseID(&result.FuzzCase)
	record := divergenceRecord{
		CaseID:         caseID,
		FuzzCase:       result.FuzzCase,
		AdapterResults: result.AdapterResults,
		Differences:    result.Differences,
		Equivalent:     false,
		Summary:        result.Summary,
		RecordedAt:     m.now().UTC().Format(time.RFC3339),
	}
	return m.writeRecord(m.divergencesDir, caseID, record)
}

func (m *Manager) recordCrash(result *analysis.DifferentialResult) error {
	caseID := CaseID(&result.FuzzCase)
	record := crashRecord{
		CaseID:         caseID,
		OriginalCase:   result.FuzzCase,
		MinimizedCase:  m.MinimizeCase(&result.FuzzCase),
		AdapterResults: result.AdapterResults,
		Differences:    result.Differences,
		MinimizedAt:    m.now().UTC().Format(time.RFC3339),
	}
	return m.writeRecord(m.crashesDir, caseID, record)
}

func (m *Manager) writeRecord(dir, caseID string, record any) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("corpus: marshal %s: %w", caseID, err)
	}
	path := filepath.Join(dir, caseID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("corpus: write %s: %w", path, err)
	}
	return nil
}

// MinimizeCase reduces a divergent case's parameters to a smaller
// reproducer. Essential keys are kept unconditionally; other keys survive
// only with a non-trivial value. This is a heuristic, not a minimality
// proof.
func (m *Manager) MinimizeCase(c *domain.FuzzCase) domain.FuzzCase {
	minimized := domain.FuzzCase{
		MethodName:         c.MethodName,
		Parameters:         make(map[string]any),
		ExpectedResultType: c.ExpectedResultType,
	}
	for key, value := range c.Parameters {
		if _, essential := m.essentialParams[key]; essential || nonTrivial(value) {
			minimized.Parameters[key] = value
		}
	}
	return minimized
}

func nonTrivial(value any) bool {
	switch v := value.(type) {
	case string:
		return v != "" && v != "test"
	case float64:
		return v > 0
	case int:
		return v > 0
	default:
		// Bools, nulls, and containers are kept as-is.
		return true
	}
}

// GetStats counts the .json entries in each bucket.
func (m *Manager) GetStats() (Stats, error) {
	stable, err := countJSONFiles(m.stableDir)
	if err != nil {
		return Stats{}, err
	}
	divergences, err := countJSONFiles(m.divergencesDir)
	if err != nil {
		return Stats{}, err
	}
	crashes, err := countJSONFiles(m.crashesDir)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		StableCases: stable,
		Divergences: divergences,
		Crashes:     crashes,
		TotalCases:  stable + divergences + crashes,
	}, nil
}

func countJSONFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrDirectoryNotFound, dir, err)
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			count++
		}
	}
	return count, nil
}

// CleanupOldFiles removes corpus files across all buckets whose modification
// time precedes now minus the given number of days. Returns the number of
// files removed.
func (m *Manager) CleanupOldFiles(days int) (int, error) {
	cutoff := m.now().Add(-time.Duration(days) * 24 * time.Hour)
	cleaned := 0

	for _, dir := range []string{m.stableDir, m.divergencesDir, m.crashesDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil || info.IsDir() {
				continue
			}
			if info.ModTime().Before(cutoff) {
				if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
					cleaned++
				}
			}
		}
	}
	return cleaned, nil
}

// ListDivergences returns the decoded divergence records, newest first,
// up to limit (0 = all). Used by the status API and MCP tools.
func (m *Manager) ListDivergences(limit int) ([]map[string]any, error) {
	entries, err := os.ReadDir(m.divergencesDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDirectoryNotFound, m.divergencesDir, err)
	}

	type fileInfo struct {
		name    string
		modTime time.Time
	}
	var files []fileInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{name: entry.Name(), modTime: info.ModTime()})
	}

	// Newest first.
	for i := 0; i < len(files); i++ {
		for j := i + 1; j < len(files); j++ {
			if files[j].modTime.After(files[i].modTime) {
				files[i], files[j] = files[j], files[i]
			}
		}
	}

	var records []map[string]any
	for _, f := range files {
		if limit > 0 && len(records) >= limit {
			break
		}
		data, err := os.ReadFile(filepath.Join(m.divergencesDir, f.name))
		if err != nil {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// GetDivergence loads one divergence record by case id.
func (m *Manager) GetDivergence(caseID string) (map[string]any, error) {
	path := filepath.Join(m.divergencesDir, caseID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read divergence %s: %w", caseID, err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corpus: parse divergence %s: %w", caseID, err)
	}
	return record, nil
}
