// Package operation implements the auditable command abstraction every
// state-reading or state-changing action runs through.
//
// An operation is executed with Execute, which records one Event in the
// caller's transaction before running the operation's effect. Because the
// Event and the effect share the transaction, a failing effect discards its
// Event as well. Operations compose by calling Execute on sub-operations with
// the same transaction handle.
package operation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/event/entity"
	eventrepo "github.com/ovaphlow/pitchfork/service-glossary-go/internal/event/repo"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/utilities"
)

var ErrAlreadyExecuted = errors.New("operation already executed")

// Operation is a single unit of business logic producing a T.
type Operation[T any] interface {
	// Name is recorded as the Event type.
	Name() string
	// Options is the input snapshot recorded on the Event. Secrets are kept
	// out of it by the options types' JSON tags.
	Options() any
	// Run performs the effect. Callers use Execute instead.
	Run(ctx context.Context, tx database.Queryer) (T, error)

	claim() bool
}

// Base is embedded by every operation. It carries the immutable options and
// guards against a second execution of the same instance.
type Base[O any] struct {
	Opts O
	ran  atomic.Bool
}

func (b *Base[O]) Options() any { return b.Opts }

func (b *Base[O]) claim() bool { return b.ran.CompareAndSwap(false, true) }

// Execute records the audit Event for op inside tx and then runs it.
func Execute[T any](ctx context.Context, tx database.Queryer, op Operation[T]) (T, error) {
	var zero T
	name := op.Name()
	if !op.claim() {
		return zero, fmt.Errorf("%s: %w", name, ErrAlreadyExecuted)
	}

	snapshot, err := json.Marshal(op.Options())
	if err != nil {
		return zero, fmt.Errorf("%s: encode options: %w", name, err)
	}

	ev := &entity.Event{
		Type:        name,
		Options:     snapshot,
		CreatedAt:   time.Now().UTC(),
		CreatedByID: ActorID(ctx),
	}
	if err := eventrepo.NewEventRepo(tx).Create(ctx, ev); err != nil {
		return zero, fmt.Errorf("%s: record event: %w", name, err)
	}

	start := time.Now()
	res, err := op.Run(ctx, tx)
	utilities.LoggerFrom(ctx).Debugw("operation",
		"name", name,
		"event_id", ev.ID,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		"err", err,
	)
	return res, err
}
