// Package player moves frames from a [video.Source] to a display at the
// source's frame rate.
//
// The loop is single-threaded. Everything that changes between iterations
// lives in [State], which [Loop.Step] advances one frame at a time:
//
//	loop := player.New(src, term, term, player.WithPacer(player.SleepPacer{}))
//	err := loop.Run(ctx)
//
// Pressing space adds the rotation step (5 degrees by default) to the angle
// applied to every following frame. [Loop.Run] returns nil once ctx is
// cancelled and the first error otherwise.
package player
