// Package middleware provides boutique middleware for the game store.
package middleware

import (
	"reflect"

	"github.com/golang/glog"
	"github.com/johnsiilver/boutique"

	"stockmarket/persist"
	"stockmarket/state/data"
)

// Persister saves every committed state change to disk, so a reload picks
// the game up exactly where it left off.
type Persister struct {
	Store *persist.Store
}

// SaveOnCommit implements boutique.Middleware. The write happens after the
// commit, off the Perform path, so persistence latency never blocks a game
// action. A failed write is logged and the game carries on; the next commit
// retries naturally.
//
// An action that changes no fields is never committed and Committed never
// signals, so waiting on it would block Perform forever. Those dispatches
// are detected up front and skipped.
func (p *Persister) SaveOnCommit(args *boutique.MWArgs) (changedData interface{}, stop bool, err error) {
	if reflect.DeepEqual(args.GetState().Data, args.NewData) {
		args.WG.Done()
		return nil, false, nil
	}

	go func() {
		defer args.WG.Done()
		state := <-args.Committed
		if state.IsZero() { // Another middleware killed the commit.
			return
		}
		if err := p.Store.Save(state.Data.(data.State)); err != nil {
			glog.Errorf("persisting state failed: %v", err)
		}
	}()
	return nil, false, nil
}
