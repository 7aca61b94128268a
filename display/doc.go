// Package display shows frames full screen in the terminal and collects key
// presses for the playback loop.
//
// A [Terminal] wraps a Bubble Tea program in the alternate screen, titled
// "Video". Frames handed to [Terminal.Present] are fitted to the window and
// drawn as half-block characters; the bottom line shows the latest log line
// from [Terminal.Follow]. Key presses other than ctrl+c are buffered for
// [Terminal.PollKey], which never blocks. ctrl+c ends the program.
//
//	term := display.New()
//	go func() { term.Stop(loop.Run(ctx)) }()
//	err := term.Run()
package display
