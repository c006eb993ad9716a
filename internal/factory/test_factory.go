package factory

import (
	"time"

	"github.com/blockduel/blockduel-go/internal/dependencies/mocks"
	"github.com/blockduel/blockduel-go/internal/storage/memory"
	"github.com/blockduel/blockduel-go/internal/testutil"
	memorytransport "github.com/blockduel/blockduel-go/internal/transport/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	logger := testutil.NopLogger()
	store := memory.New()
	tr := memorytransport.New(logger)
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, tr, mockClock, mockRandom, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
