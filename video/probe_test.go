package video_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/rotoplay/video"
)

func TestInfoValidate(t *testing.T) {
	t.Parallel()

	valid := video.Info{Path: "clip", FrameCount: 10, FrameRate: 5, Width: 4, Height: 4}

	tcs := map[string]struct {
		mutate func(*video.Info)
		err    error
	}{
		"valid": {
			mutate: func(*video.Info) {},
		},
		"zero frame rate": {
			mutate: func(i *video.Info) { i.FrameRate = 0 },
			err:    video.ErrInvalidSource,
		},
		"zero frame count": {
			mutate: func(i *video.Info) { i.FrameCount = 0 },
			err:    video.ErrInvalidSource,
		},
		"zero width": {
			mutate: func(i *video.Info) { i.Width = 0 },
			err:    video.ErrInvalidSource,
		},
		"negative height": {
			mutate: func(i *video.Info) { i.Height = -4 },
			err:    video.ErrInvalidSource,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			info := valid
			tc.mutate(&info)

			err := info.Validate()
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func requireFFmpeg(t *testing.T) {
	t.Helper()

	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		_, err := exec.LookPath(bin)
		if err != nil {
			t.Skipf("%s not found in PATH", bin)
		}
	}
}

// encodeTestVideo renders ten frames of ffmpeg's 5 fps test pattern into path.
func encodeTestVideo(t *testing.T, path string, args ...string) {
	t.Helper()

	requireFFmpeg(t)

	full := append([]string{
		"-v", "error", "-nostdin", "-y",
		"-f", "lavfi", "-i", "testsrc=size=32x24:rate=5",
		"-frames:v", "10",
	}, args...)
	full = append(full, path)

	out, err := exec.CommandContext(context.Background(), "ffmpeg", full...).CombinedOutput()
	if err != nil {
		t.Skipf("encoding test video: %v: %s", err, out)
	}
}

func TestDecoder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.mkv")
	encodeTestVideo(t, path, "-c:v", "ffv1")

	src, err := video.Open(context.Background(), path)
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, src.Close()) })

	assert.Equal(t, 10, src.FrameCount())
	assert.Equal(t, 5, src.FrameRate())
	assert.Equal(t, 32, src.Size().X)
	assert.Equal(t, 24, src.Size().Y)

	var first []byte

	for i := range 10 {
		assert.Equal(t, i, src.Position())

		frame, err := src.ReadNextFrame()
		require.NoError(t, err)
		require.Len(t, frame.Pix, 32*24*4)

		if i == 0 {
			first = frame.Pix
		}
	}

	_, err = src.ReadNextFrame()
	require.ErrorIs(t, err, video.ErrEndOfStream)

	require.NoError(t, src.Seek(0))
	assert.Equal(t, 0, src.Position())

	again, err := src.ReadNextFrame()
	require.NoError(t, err)
	assert.Equal(t, first, again.Pix, "rewinding must replay the first frame")

	require.ErrorIs(t, src.Seek(10), video.ErrInvalidArgument)
}

func TestProbeMP4File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.mp4")
	encodeTestVideo(t, path, "-c:v", "mpeg4")

	info, err := video.Probe(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 10, info.FrameCount)
	assert.Equal(t, 5, info.FrameRate)
	assert.Equal(t, 32, info.Width)
	assert.Equal(t, 24, info.Height)
	require.NoError(t, info.Validate())
}

func TestProbeNotVideo(t *testing.T) {
	t.Parallel()

	requireFFmpeg(t)

	path := filepath.Join(t.TempDir(), "notes.mkv")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	_, err := video.Probe(context.Background(), path)
	require.ErrorIs(t, err, video.ErrSourceUnavailable)
}
