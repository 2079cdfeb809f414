package cli

import "context"

func withTiming(ctx context.Context, timing commandTiming) context.Context {
	return context.WithValue(ctx, commandTimingKey{}, timing)
}

func timingFrom(ctx context.Context) (commandTiming, bool) {
	timing, ok := ctx.Value(commandTimingKey{}).(commandTiming)
	return timing, ok
}
