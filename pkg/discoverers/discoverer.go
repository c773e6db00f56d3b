// Package discoverers locates the processable items of a Houdini package.
package discoverers

import (
	"github.com/captainhammy/houdini-package-runner/pkg/items"
)

// ItemDiscoverer supplies the items a runner should process.
type ItemDiscoverer interface {
	// Path returns the root the discovery ran from.
	Path() string

	// Items returns the discovered items.
	Items() []items.Item
}

// BaseDiscoverer is the common discoverer state.
type BaseDiscoverer struct {
	path  string
	items []items.Item
}

// NewBaseDiscoverer creates a discoverer rooted at path with an initial item list.
func NewBaseDiscoverer(path string, discovered []items.Item) *BaseDiscoverer {
	return &BaseDiscoverer{path: path, items: discovered}
}

// Path returns the discovery root.
func (d *BaseDiscoverer) Path() string { return d.path }

// Items returns the discovered items.
func (d *BaseDiscoverer) Items() []items.Item { return d.items }

// AddItems appends items to the discovered list.
func (d *BaseDiscoverer) AddItems(discovered ...items.Item) {
	d.items = append(d.items, discovered...)
}
