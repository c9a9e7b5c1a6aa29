package notify

import (
	"github.com/complyra/complyra/internal/messenger"
)

// Registry is a simple map-based channel registry for the dispatcher.
type Registry struct {
	messengers map[string]messenger.Messenger
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		messengers: make(map[string]messenger.Messenger),
	}
}

// Register adds a messenger for the given channel name.
func (r *Registry) Register(channel string, m messenger.Messenger) {
	r.messengers[channel] = m
}

// Get returns the messenger for the given channel, or false if not registered.
func (r *Registry) Get(channel string) (messenger.Messenger, bool) {
	m, ok := r.messengers[channel]
	return m, ok
}
