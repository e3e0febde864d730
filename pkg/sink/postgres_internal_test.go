// pkg/sink/postgres_internal_test.go
package sink

import (
	"fmt"
	"sync"
	"testing"
)

// Pipeline workers share one sink and call WriteTable concurrently for
// different datasets, so the created-table tracker must tolerate
// simultaneous reads and writes.
func TestPostgresSinkCreatedTrackerIsConcurrencySafe(t *testing.T) {
	s := &PostgresSink{created: make(map[string]bool)}

	const workers = 8
	const tables = 16

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < tables; i++ {
				output := fmt.Sprintf("cuadro%d_clean", i)
				if !s.alreadyCreated(output) {
					s.markCreated(output)
				}
			}
		}()
	}
	wg.Wait()

	for i := 0; i < tables; i++ {
		output := fmt.Sprintf("cuadro%d_clean", i)
		if !s.alreadyCreated(output) {
			t.Errorf("expected %s to be tracked as created", output)
		}
	}
}

func TestPostgresSinkMarkCreatedIsIdempotent(t *testing.T) {
	s := &PostgresSink{created: make(map[string]bool)}

	s.markCreated("cuadro1_clean")
	s.markCreated("cuadro1_clean")

	if !s.alreadyCreated("cuadro1_clean") {
		t.Error("expected cuadro1_clean to be tracked as created")
	}
	if s.alreadyCreated("cuadro3_clean") {
		t.Error("unexpected tracking for cuadro3_clean")
	}
}
