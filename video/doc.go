// Package video opens decoded-frame sources for playback.
//
// A [Source] yields [*image.RGBA] frames in order and can be repositioned with
// [Source.Seek]. Sources are acquired with [Open], which accepts either a video
// file or a directory of PNG frames:
//
//	src, err := video.Open(ctx, "clip.mp4", video.WithFrameRate(24))
//	if err != nil {
//	    return err // Wraps ErrSourceUnavailable or ErrInvalidSource.
//	}
//	defer src.Close()
//
//	for {
//	    frame, err := src.ReadNextFrame()
//	    if errors.Is(err, video.ErrEndOfStream) {
//	        break
//	    }
//	    ...
//	}
//
// Video files are decoded by an ffmpeg process writing raw RGBA frames to a
// pipe. Their metadata comes from [Probe], which parses MP4-family containers
// directly and asks ffprobe about everything else.
//
// Every source is validated when it is opened: a frame rate, frame count, or
// frame size of zero is rejected with [ErrInvalidSource].
package video
