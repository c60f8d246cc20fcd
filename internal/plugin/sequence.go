package plugin

import "context"

// Sequence composes runners into one, calling them in order and feeding each
// the Props returned by the previous one. It stops at the first failure and
// returns that failure unchanged; earlier side effects are not undone.
// An empty Sequence returns its input. A runner built with New refuses a done
// ctx, so cancellation stops the sequence at the next step.
func Sequence(runners ...Runner) Runner {
	rs := append([]Runner(nil), runners...)
	return func(ctx context.Context, p Props) (Props, error) {
		out := p
		var err error
		for _, r := range rs {
			out, err = r(ctx, out)
			if err != nil {
				return Props{}, err
			}
		}
		return out, nil
	}
}
