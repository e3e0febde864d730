// pkg/modelstats/summary_test.go
package modelstats_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/transito-gt/tablero/pkg/modelstats"
	"github.com/transito-gt/tablero/pkg/source"
)

const summaryJSON = `{
  "fecha_entrenamiento": "2025-06-01 14:30:00",
  "modelo1_gravedad": {
    "descripcion": "Clasifica la gravedad del accidente",
    "features": ["departamento", "hora", "tipo_vehiculo"],
    "n_samples": 41000,
    "metricas": {
      "RandomForest": {
        "accuracy": 0.87, "precision": 0.85, "recall": 0.84, "f1_score": 0.845,
        "confusion_matrix": [[300, 40], [35, 280]]
      },
      "LogisticRegression": {
        "accuracy": 0.81, "precision": 0.79, "recall": 0.80, "f1_score": 0.795,
        "confusion_matrix": [[280, 60], [55, 260]]
      }
    }
  },
  "modelo2_cantidad": {
    "descripcion": "Predice la cantidad de accidentes",
    "features": ["departamento", "mes"],
    "n_samples": 1440,
    "metricas": {
      "GradientBoosting": {"mse": 1520.5, "rmse": 39.0, "mae": 28.4, "r2": 0.91},
      "LinearRegression": {"mse": 2500.0, "rmse": 50.0, "mae": 37.2, "r2": 0.83}
    }
  },
  "modelo3_tipo": {
    "descripcion": "Clasifica el nivel de riesgo",
    "features": ["hora", "dia_semana"],
    "n_samples": 16800,
    "metricas": {
      "RandomForest": {"accuracy": 0.78, "precision": 0.76, "recall": 0.75, "f1_score": 0.755}
    }
  }
}`

func writeSummary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resumen_modelos.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	return path
}

func TestLoadSummary(t *testing.T) {
	summary, err := modelstats.Load(writeSummary(t, summaryJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if summary.TrainedAt != "2025-06-01 14:30:00" {
		t.Fatalf("trained at = %q", summary.TrainedAt)
	}
	if len(summary.Models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(summary.Models))
	}

	severity := summary.Models[modelstats.ModelSeverity]
	if severity.NSamples != 41000 || len(severity.Features) != 3 {
		t.Fatalf("unexpected severity model info: %+v", severity)
	}

	rf := severity.Metrics["RandomForest"]
	if rf.Kind() != modelstats.KindClassification {
		t.Fatalf("RandomForest kind = %s", rf.Kind())
	}
	if len(rf.ConfusionMatrix) != 2 {
		t.Fatalf("confusion matrix lost: %v", rf.ConfusionMatrix)
	}

	gb := summary.Models[modelstats.ModelVolume].Metrics["GradientBoosting"]
	if gb.Kind() != modelstats.KindRegression {
		t.Fatalf("GradientBoosting kind = %s", gb.Kind())
	}
	if gb.Accuracy != nil {
		t.Fatal("regression bundle should not carry accuracy")
	}
}

func TestBestAlgorithm(t *testing.T) {
	summary, err := modelstats.Load(writeSummary(t, summaryJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Classification: highest F1 wins.
	algo, bundle, ok := summary.Models[modelstats.ModelSeverity].Best()
	if !ok || algo != "RandomForest" {
		t.Fatalf("severity best = %q (ok=%v), want RandomForest", algo, ok)
	}
	if *bundle.F1Score != 0.845 {
		t.Fatalf("best F1 = %v", *bundle.F1Score)
	}

	// Regression: lowest RMSE wins.
	algo, bundle, ok = summary.Models[modelstats.ModelVolume].Best()
	if !ok || algo != "GradientBoosting" {
		t.Fatalf("volume best = %q (ok=%v), want GradientBoosting", algo, ok)
	}
	if *bundle.RMSE != 39.0 {
		t.Fatalf("best RMSE = %v", *bundle.RMSE)
	}
}

func TestLoadMissingSummary(t *testing.T) {
	_, err := modelstats.Load(filepath.Join(t.TempDir(), "absent.json"))

	var missing *source.MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSourceError, got %v", err)
	}
}

func TestValidateRejectsIncompleteSummary(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"no date", `{"modelo1_gravedad": {"metricas": {"RF": {"f1_score": 0.8}}}, "modelo2_cantidad": {"metricas": {"LR": {"rmse": 1.0}}}, "modelo3_tipo": {"metricas": {"RF": {"f1_score": 0.7}}}}`},
		{"missing model", `{"fecha_entrenamiento": "2025-06-01", "modelo1_gravedad": {"metricas": {"RF": {"f1_score": 0.8}}}}`},
		{"empty metrics", `{"fecha_entrenamiento": "2025-06-01", "modelo1_gravedad": {"metricas": {}}, "modelo2_cantidad": {"metricas": {"LR": {"rmse": 1.0}}}, "modelo3_tipo": {"metricas": {"RF": {"f1_score": 0.7}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := modelstats.Load(writeSummary(t, tt.json)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
