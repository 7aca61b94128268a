package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevision(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		info *debug.BuildInfo
		ok   bool
		want string
	}{
		"no build info": {
			want: "unknown",
		},
		"no vcs settings": {
			info: &debug.BuildInfo{},
			ok:   true,
			want: "unknown",
		},
		"clean": {
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.modified", Value: "false"},
			}},
			ok:   true,
			want: "abc123",
		},
		"dirty": {
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.modified", Value: "true"},
				{Key: "vcs.revision", Value: "abc123"},
			}},
			ok:   true,
			want: "abc123-dirty",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := revision(func() (*debug.BuildInfo, bool) { return tc.info, tc.ok })
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	i := Info{Version: "v1.2.0", Revision: "abc123", GoVersion: "go1.25.0", Platform: "linux/amd64"}
	assert.Equal(t, "v1.2.0 (abc123, go1.25.0, linux/amd64)", i.String())
}

func TestGet(t *testing.T) {
	t.Parallel()

	i := Get()
	assert.NotEmpty(t, i.Version)
	assert.NotEmpty(t, i.GoVersion)
	assert.Contains(t, i.Platform, "/")
}
