// pkg/modelstats/summary.go
package modelstats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"

	"github.com/transito-gt/tablero/pkg/source"
)

// Model keys present in every training summary.
const (
	ModelSeverity = "modelo1_gravedad"
	ModelVolume   = "modelo2_cantidad"
	ModelRisk     = "modelo3_tipo"
)

// ModelKind distinguishes classification bundles from regression bundles.
type ModelKind string

const (
	KindClassification ModelKind = "classification"
	KindRegression     ModelKind = "regression"
	KindUnknown        ModelKind = "unknown"
)

// Bundle holds the evaluation metrics for one algorithm of one model.
// Classification and regression bundles share the struct; absent metrics
// stay nil so the two kinds can be told apart.
type Bundle struct {
	Accuracy        *float64 `json:"accuracy,omitempty"`
	Precision       *float64 `json:"precision,omitempty"`
	Recall          *float64 `json:"recall,omitempty"`
	F1Score         *float64 `json:"f1_score,omitempty"`
	ConfusionMatrix [][]int  `json:"confusion_matrix,omitempty"`
	MSE             *float64 `json:"mse,omitempty"`
	RMSE            *float64 `json:"rmse,omitempty"`
	MAE             *float64 `json:"mae,omitempty"`
	R2              *float64 `json:"r2,omitempty"`
}

// Kind reports whether the bundle carries classification or regression metrics.
func (b *Bundle) Kind() ModelKind {
	if b.F1Score != nil || b.Accuracy != nil {
		return KindClassification
	}
	if b.RMSE != nil || b.MSE != nil {
		return KindRegression
	}
	return KindUnknown
}

// ModelInfo describes one trained model and its per-algorithm metrics.
type ModelInfo struct {
	Description string             `json:"descripcion"`
	Features    []string           `json:"features"`
	NSamples    int                `json:"n_samples"`
	Metrics     map[string]*Bundle `json:"metricas"`
}

// Best returns the winning algorithm for this model: highest F1 for
// classification, lowest RMSE for regression. Ties break alphabetically
// so the result is deterministic.
func (mi *ModelInfo) Best() (string, *Bundle, bool) {
	names := make([]string, 0, len(mi.Metrics))
	for name := range mi.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var bestName string
	var bestBundle *Bundle
	bestScore := math.Inf(-1)

	for _, name := range names {
		b := mi.Metrics[name]
		var score float64
		switch b.Kind() {
		case KindClassification:
			if b.F1Score == nil {
				continue
			}
			score = *b.F1Score
		case KindRegression:
			if b.RMSE == nil {
				continue
			}
			score = -*b.RMSE
		default:
			continue
		}
		if score > bestScore {
			bestScore = score
			bestName = name
			bestBundle = b
		}
	}

	if bestBundle == nil {
		return "", nil, false
	}
	return bestName, bestBundle, true
}

// Summary is the parsed training summary file. The file mixes a scalar
// training date with model entries at the top level, so it needs a custom
// unmarshaler.
type Summary struct {
	TrainedAt string
	Models    map[string]*ModelInfo
}

// UnmarshalJSON splits the mixed top-level object into the training date
// and the model entries.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Models = make(map[string]*ModelInfo)
	for key, value := range raw {
		if key == "fecha_entrenamiento" {
			if err := json.Unmarshal(value, &s.TrainedAt); err != nil {
				return fmt.Errorf("invalid fecha_entrenamiento: %w", err)
			}
			continue
		}

		var info ModelInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("invalid model entry %q: %w", key, err)
		}
		s.Models[key] = &info
	}

	return nil
}

// Load reads and parses a training summary file. An absent file is a
// MissingSourceError: the caller renders no partial model view.
func Load(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &source.MissingSourceError{Name: "model summary", Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to read model summary: %w", err)
	}

	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse model summary %s: %w", path, err)
	}

	if err := summary.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model summary %s: %w", path, err)
	}

	return &summary, nil
}

// Validate checks that the three known models are present and well formed.
func (s *Summary) Validate() error {
	if s.TrainedAt == "" {
		return fmt.Errorf("missing fecha_entrenamiento")
	}

	for _, key := range []string{ModelSeverity, ModelVolume, ModelRisk} {
		info, ok := s.Models[key]
		if !ok {
			return fmt.Errorf("missing model entry %q", key)
		}
		if len(info.Metrics) == 0 {
			return fmt.Errorf("model %q has no algorithm metrics", key)
		}
		for name, b := range info.Metrics {
			if b.Kind() == KindUnknown {
				return fmt.Errorf("model %q algorithm %q has no recognizable metrics", key, name)
			}
		}
	}

	return nil
}
