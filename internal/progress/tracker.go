package progress

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	sha256simd "github.com/minio/sha256-simd"
)

// bigIntOrZero parses a decimal string into a *big.Int, reporting failure
// instead of silently treating a malformed value as zero.
type bigIntOrZero struct {
	v *big.Int
}

func (b *bigIntOrZero) set(s string) (*bigIntOrZero, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	b.v = v
	return b, true
}

// jsonState mirrors State for serialization: math/big.Int fields become
// decimal strings so a combination count past 2^53 round-trips through
// JSON without precision loss.
type jsonState struct {
	RunID              string `json:"run_id"`
	Fingerprint        string `json:"fingerprint"`
	LastProcessedIndex string `json:"last_processed_index"`
	TotalCombinations  string `json:"total_combinations"`
	StartTime          string `json:"start_time"`
	LastUpdateTime     string `json:"last_update_time"`
	ChunksProcessed    int    `json:"chunks_processed"`
	Status             Status `json:"status"`
	Error              string `json:"error,omitempty"`
	Checksum           string `json:"checksum"`
}

func (s *State) toJSON() jsonState {
	s.mu.Lock()
	defer s.mu.Unlock()
	js := jsonState{
		RunID:              s.RunID,
		Fingerprint:        s.Fingerprint,
		LastProcessedIndex: s.LastProcessedIndex.String(),
		TotalCombinations:  s.TotalCombinations.String(),
		StartTime:          s.StartTime.Format(time.RFC3339Nano),
		LastUpdateTime:     s.LastUpdateTime.Format(time.RFC3339Nano),
		ChunksProcessed:    s.ChunksProcessed,
		Status:             s.Status,
		Error:              s.Err,
	}
	js.Checksum = checksum(js)
	return js
}

// checksum hashes every field except Checksum itself, over the field's
// canonical JSON encoding, so Save/Load can detect a hand-edited or
// truncated progress file instead of silently resuming from garbage.
func checksum(js jsonState) string {
	js.Checksum = ""
	body, _ := json.Marshal(js)
	sum := sha256simd.Sum256(body)
	return fmt.Sprintf("%x", sum)
}

func fromJSON(js jsonState) (*State, error) {
	lastProcessed, ok := new(bigIntOrZero).set(js.LastProcessedIndex)
	if !ok {
		return nil, fmt.Errorf("progress: invalid last_processed_index %q", js.LastProcessedIndex)
	}
	total, ok := new(bigIntOrZero).set(js.TotalCombinations)
	if !ok {
		return nil, fmt.Errorf("progress: invalid total_combinations %q", js.TotalCombinations)
	}
	start, err := time.Parse(time.RFC3339Nano, js.StartTime)
	if err != nil {
		return nil, fmt.Errorf("progress: invalid start_time: %w", err)
	}
	updated, err := time.Parse(time.RFC3339Nano, js.LastUpdateTime)
	if err != nil {
		return nil, fmt.Errorf("progress: invalid last_update_time: %w", err)
	}

	s := &State{
		RunID:              js.RunID,
		Fingerprint:        js.Fingerprint,
		LastProcessedIndex: lastProcessed.v,
		TotalCombinations:  total.v,
		StartTime:          start,
		LastUpdateTime:     updated,
		ChunksProcessed:    js.ChunksProcessed,
		Status:             js.Status,
		Err:                js.Error,
		pending:            make(map[string]*big.Int),
	}
	return s, nil
}

// Save atomically rewrites the progress file at path: it writes to a
// sibling temp file first and renames over the target, so a crash mid-write
// can never leave a half-written, unparseable progress file behind.
func (s *State) Save(path string) error {
	js := s.toJSON()
	body, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return fmt.Errorf("progress: marshaling state: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".progress-*.tmp")
	if err != nil {
		return fmt.Errorf("progress: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("progress: writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("progress: syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("progress: closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("progress: renaming temp file into place: %w", err)
	}
	return nil
}

// Load reads the progress file at path. A missing file, unparseable JSON,
// a checksum mismatch, or malformed field contents are all treated as "no
// usable prior state" rather than an error - Load returns (nil, nil) and
// the caller starts a fresh run. Only an unexpected I/O failure reading an
// existing file (e.g. permission denied) is reported as an error.
func Load(path string) (*State, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var js jsonState
	if err := json.Unmarshal(body, &js); err != nil {
		return nil, nil
	}
	if got := checksum(js); got != js.Checksum {
		return nil, nil
	}
	s, err := fromJSON(js)
	if err != nil {
		return nil, nil
	}
	return s, nil
}
