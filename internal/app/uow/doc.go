// Package uow stages the writes of one use case and applies them together.
//
// Actions run in the order they were added. When one fails, the actions that
// already ran are rolled back in reverse order:
//
//	u := uow.New()
//	_ = u.Add(uow.Func{
//	    Desc: "store synthesized audio",
//	    Do:   func(ctx context.Context) error { return store.Put(ctx, id, data, ct) },
//	    Undo: func(ctx context.Context) error { return store.Delete(ctx, id) },
//	})
//	_ = u.Add(uow.Func{Desc: "save conversation", Do: save})
//
//	if err := u.Commit(ctx); err != nil {
//	    // the audio object has been deleted again
//	}
package uow
