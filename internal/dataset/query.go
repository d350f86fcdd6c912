package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Progress receives one Add(1) per (data, key, measure) combination a query
// considers, including combinations skipped by the ImageNet16-120 corruption
// exclusion or by MissingOK, and a single Finish once all combinations are
// done. *progressbar.ProgressBar satisfies it directly.
type Progress interface {
	Add(n int) error
	Finish() error
}

// QueryOptions selects which result files a query reads. A nil selector
// slice means "all known" values for that dimension; a one-element slice is
// the single-value case. Selector order is preserved in iteration but only
// affects progress ordering, never the result content.
type QueryOptions struct {
	Data     []string
	Keys     []string
	Measures []string

	// MissingOK skips result files that do not exist instead of failing.
	MissingOK bool

	// Progress, when non-nil, is advanced as described on the interface.
	Progress Progress
}

// Result maps data -> key -> measure -> payload. The payload is the
// per-architecture metric table exactly as stored on disk; it is never
// reshaped or reinterpreted.
type Result map[string]map[string]map[string]json.RawMessage

// Dataset is a handle on one dataset root directory with its manifest
// loaded. Result files are read fresh on every query, never cached.
type Dataset struct {
	root  string
	index *Index
}

// Open loads <root>/meta.json and returns a queryable dataset handle.
func Open(root string) (*Dataset, error) {
	idx, err := LoadIndex(root)
	if err != nil {
		return nil, err
	}
	return &Dataset{root: root, index: idx}, nil
}

// Root returns the dataset root directory.
func (d *Dataset) Root() string { return d.root }

// Index returns the loaded architecture manifest.
func (d *Dataset) Index() *Index { return d.index }

// ResultPath returns the result file location for one (data, key, measure)
// combination.
func (d *Dataset) ResultPath(data, key, measure string) string {
	return filepath.Join(d.root, data, fmt.Sprintf("%s_%s.json", key, measure))
}

// Query resolves a (data x keys x measures) selection into a nested Result.
//
// Corruption keys are skipped entirely for ImageNet16-120: that combination
// was never evaluated and no file exists for it. Keys for which no measure
// produced data are pruned from the result, so empty placeholder maps never
// appear. On any error the partially built result is discarded.
func (d *Dataset) Query(opts QueryOptions) (Result, error) {
	data := opts.Data
	if data == nil {
		data = AllData()
	}
	keys := opts.Keys
	if keys == nil {
		keys = AllKeys()
	}
	measures := opts.Measures
	if measures == nil {
		measures = AllMeasures()
	}

	advance := func(n int) {
		if opts.Progress != nil {
			_ = opts.Progress.Add(n)
		}
	}

	result := make(Result, len(data))
	for _, dt := range data {
		result[dt] = make(map[string]map[string]json.RawMessage, len(keys))
		for _, k := range keys {
			if dt == DataImageNet16 && IsCorruptionKey(k) {
				advance(len(measures))
				continue
			}

			byMeasure := make(map[string]json.RawMessage, len(measures))
			for _, m := range measures {
				file := d.ResultPath(dt, k, m)
				payload, err := readPayload(file, dt, k, m)
				if err != nil {
					if opts.MissingOK && os.IsNotExist(err) {
						advance(1)
						continue
					}
					return nil, err
				}
				byMeasure[m] = payload
				advance(1)
			}

			if len(byMeasure) > 0 {
				result[dt][k] = byMeasure
			}
		}
	}

	if opts.Progress != nil {
		_ = opts.Progress.Finish()
	}
	return result, nil
}

// readPayload reads one result file and unwraps its redundant
// [data][key][measure] nesting. Not-exist errors from os.Open are returned
// unwrapped-compatible (errors.Is fs.ErrNotExist holds) so Query can apply
// the MissingOK policy.
func readPayload(path, data, key, measure string) (json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("cannot open result file %s: %w", path, err)
	}
	defer f.Close()

	var file map[string]map[string]map[string]json.RawMessage
	if err := json.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("invalid result JSON %s: %w", path, err)
	}
	payload, ok := file[data][key][measure]
	if !ok {
		return nil, fmt.Errorf("%w: %s is missing [%s][%s][%s]", ErrMalformedResult, path, data, key, measure)
	}
	return payload, nil
}
