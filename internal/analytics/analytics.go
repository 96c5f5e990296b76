package analytics

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
	"github.com/safedep/dry/log"
)

const (
	disableAnalyticsEnvKey = "TRYOUT_DISABLE_ANALYTICS"
	anonymousIDFileName    = "anonymous_id"
)

// Set at build time with -ldflags. Analytics stay disabled without a key.
var (
	posthogAPIKey   = ""
	posthogEndpoint = "https://us.i.posthog.com"
)

type messageQueue interface {
	Enqueue(posthog.Message) error
	Close() error
}

type tracker struct {
	queue      messageQueue
	distinctID string
}

var (
	globalTracker *tracker
	mu            sync.Mutex
)

// Init sets up the global tracker. The anonymous identifier is stored in
// stateDir so that runs of the same user are grouped. Tracking is a no-op
// when disabled, when no API key was built in, or when the opt-out
// environment variable is set.
func Init(stateDir string, disabled bool) {
	if disabled || posthogAPIKey == "" || optedOut() {
		log.Debugf("Analytics disabled")
		return
	}

	client, err := posthog.NewWithConfig(posthogAPIKey, posthog.Config{
		Endpoint: posthogEndpoint,
	})
	if err != nil {
		log.Warnf("Failed to create analytics client: %v", err)
		return
	}

	setTracker(client, anonymousID(stateDir))
}

func setTracker(queue messageQueue, distinctID string) {
	mu.Lock()
	defer mu.Unlock()

	globalTracker = &tracker{queue: queue, distinctID: distinctID}
}

func optedOut() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(disableAnalyticsEnvKey))) {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}

// anonymousID returns the stored identifier, creating it on first use. A
// fresh identifier is used when stateDir is not writable.
func anonymousID(stateDir string) string {
	if stateDir == "" {
		return uuid.New().String()
	}

	path := filepath.Join(stateDir, anonymousIDFileName)
	if data, err := os.ReadFile(path); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(string(data))); err == nil {
			return id.String()
		}
	}

	id := uuid.New().String()
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		log.Debugf("Failed to create analytics state directory: %v", err)
		return id
	}

	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		log.Debugf("Failed to store anonymous analytics id: %v", err)
	}

	return id
}

// IsEnabled returns true when events are sent
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()

	return globalTracker != nil
}

func TrackEvent(event string) {
	TrackEventWithProperties(event, nil)
}

func TrackEventWithProperties(event string, properties map[string]any) {
	mu.Lock()
	defer mu.Unlock()

	if globalTracker == nil {
		return
	}

	props := posthog.NewProperties()
	for key, value := range properties {
		props.Set(key, value)
	}

	err := globalTracker.queue.Enqueue(posthog.Capture{
		DistinctId: globalTracker.distinctID,
		Event:      event,
		Properties: props,
	})
	if err != nil {
		log.Debugf("Failed to enqueue analytics event %s: %v", event, err)
	}
}

// Close flushes pending events and disables tracking
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if globalTracker == nil {
		return
	}

	if err := globalTracker.queue.Close(); err != nil {
		log.Debugf("Failed to close analytics client: %v", err)
	}

	globalTracker = nil
}
