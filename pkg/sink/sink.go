// pkg/sink/sink.go
package sink

import (
	"context"

	"github.com/transito-gt/tablero/pkg/model"
)

// RecordSink persists one table's canonical records. The rule set supplies
// the output name and column layout; records are read-only to the sink.
type RecordSink interface {
	WriteTable(ctx context.Context, rules *model.RuleSet, records []model.CanonicalRecord) error
	Close() error
}
