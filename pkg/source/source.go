// pkg/source/source.go
package source

import (
	"context"
	"fmt"

	"github.com/transito-gt/tablero/pkg/model"
)

// TableSource acquires raw wide-format tables. Acquisition is a collaborator
// concern: the normalizer itself never touches disk or network.
type TableSource interface {
	// FetchTable returns the named raw table, or a MissingSourceError when
	// the source does not have it.
	FetchTable(ctx context.Context, name string) (*model.RawTable, error)

	// Close releases any resources held by the source.
	Close() error
}

// MissingSourceError indicates a raw table or external artifact is absent.
// It is fatal for the consumer: no partial rendering is attempted.
type MissingSourceError struct {
	Name string
	Path string
	Err  error
}

func (e *MissingSourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("source %s not found at %s", e.Name, e.Path)
	}
	return fmt.Sprintf("source %s not found", e.Name)
}

func (e *MissingSourceError) Unwrap() error {
	return e.Err
}
