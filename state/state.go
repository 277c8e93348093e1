// Package state constructs the boutique.Store that owns the game's single
// state tree. All writes go through Store.Perform with the modifiers in
// state/modifiers; all reads are snapshots handed to the selectors.
package state

import (
	"github.com/johnsiilver/boutique"

	"stockmarket/state/data"
	"stockmarket/state/modifiers"
)

// New builds the store around an initial tree. Middleware is optional; the
// game wires in the disk persister, tests usually pass none.
func New(initial data.State, middle ...boutique.Middleware) (*boutique.Store, error) {
	return boutique.New(initial, modifiers.All, middle)
}

// Current is a convenience accessor for the typed state tree.
func Current(store *boutique.Store) data.State {
	return store.State().Data.(data.State)
}
