package chain

import "context"

// Event describes one step of a chain.
type Event struct {
	ChainID          string
	State            uint64
	Operator         string
	LogHastingsRatio float64
	LogDensity       float64
	Infeasible       bool
	Err              error
}

// Hooks defines callbacks for chain observability. Nil callbacks are skipped.
type Hooks struct {
	OnPropose func(context.Context, *Event)
	OnAccept  func(context.Context, *Event)
	OnReject  func(context.Context, *Event)
	OnFatal   func(context.Context, *Event)
}

func emit(ctx context.Context, fn func(context.Context, *Event), ev *Event) {
	if fn != nil {
		fn(ctx, ev)
	}
}

// MergeHooks returns hooks that call every non-nil callback of hs in order.
func MergeHooks(hs ...Hooks) Hooks {
	merge := func(pick func(Hooks) func(context.Context, *Event)) func(context.Context, *Event) {
		var fns []func(context.Context, *Event)
		for _, h := range hs {
			if fn := pick(h); fn != nil {
				fns = append(fns, fn)
			}
		}
		switch len(fns) {
		case 0:
			return nil
		case 1:
			return fns[0]
		}
		return func(ctx context.Context, e *Event) {
			for _, fn := range fns {
				fn(ctx, e)
			}
		}
	}
	return Hooks{
		OnPropose: merge(func(h Hooks) func(context.Context, *Event) { return h.OnPropose }),
		OnAccept:  merge(func(h Hooks) func(context.Context, *Event) { return h.OnAccept }),
		OnReject:  merge(func(h Hooks) func(context.Context, *Event) { return h.OnReject }),
		OnFatal:   merge(func(h Hooks) func(context.Context, *Event) { return h.OnFatal }),
	}
}
