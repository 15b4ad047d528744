package ports_test

import (
	"testing"

	mocks "github.com/target/todo-sync/internal/mocks/identity"
	"github.com/target/todo-sync/internal/ports"
)

// This test only verifies that our test doubles conform to the ports at compile time.
func TestDoublesImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.IdentityProvider = (*mocks.MockIdentityProvider)(nil)
	var _ ports.DurableStore = (*mocks.MemoryStore)(nil)
}
