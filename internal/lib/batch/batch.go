// Package batch applies one operation to many items and reports per-item outcomes.
package batch

import "context"

type Failure struct {
	ID    string `json:"id"`
	Error error  `json:"-"`
	Msg   string `json:"error"`
}

// Result lists which items succeeded and which failed. Failed items never stop
// the remaining ones from being processed.
type Result struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

func (r Result) OK() bool { return len(r.Failed) == 0 }

// Apply runs fn for every id in order, awaiting each call.
func Apply(ctx context.Context, ids []string, fn func(ctx context.Context, id string) error) Result {
	res := Result{Succeeded: []string{}, Failed: []Failure{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, Failure{ID: id, Error: err, Msg: err.Error()})
			continue
		}
		if err := fn(ctx, id); err != nil {
			res.Failed = append(res.Failed, Failure{ID: id, Error: err, Msg: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res
}
