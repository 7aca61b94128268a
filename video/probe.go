package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Info describes a source as reported by its container or by ffprobe.
type Info struct {
	Path            string  `json:"path"            yaml:"path"`
	Container       string  `json:"container"       yaml:"container"`
	Codec           string  `json:"codec,omitempty" yaml:"codec,omitempty"`
	FrameCount      int     `json:"frameCount"      yaml:"frameCount"`
	FrameRate       int     `json:"frameRate"       yaml:"frameRate"`
	Width           int     `json:"width"           yaml:"width"`
	Height          int     `json:"height"          yaml:"height"`
	DurationSeconds float64 `json:"durationSeconds" yaml:"durationSeconds"`
}

// Validate reports [ErrInvalidSource] if playback arithmetic cannot be done
// with i: pacing divides by the frame rate and looping compares against the
// frame count.
func (i Info) Validate() error {
	switch {
	case i.FrameRate <= 0:
		return fmt.Errorf("%w: %s: frame rate is %d", ErrInvalidSource, i.Path, i.FrameRate)
	case i.FrameCount <= 0:
		return fmt.Errorf("%w: %s: frame count is %d", ErrInvalidSource, i.Path, i.FrameCount)
	case i.Width <= 0 || i.Height <= 0:
		return fmt.Errorf("%w: %s: frame size is %dx%d", ErrInvalidSource, i.Path, i.Width, i.Height)
	}

	return nil
}

// Probe reads the metadata of the video file at path.
//
// MP4-family files are parsed directly; when that fails, or for any other
// container, ffprobe is used. Probe does not validate the result; see
// [Info.Validate].
func Probe(ctx context.Context, path string, opts ...Option) (Info, error) {
	return probe(ctx, path, newOptions(opts))
}

func probe(ctx context.Context, path string, o *options) (Info, error) {
	if isMP4(path) {
		info, err := probeMP4File(path)
		if err == nil {
			return info, nil
		}

		slog.DebugContext(ctx, "container probe failed, falling back to ffprobe",
			slog.String("path", path),
			slog.Any("err", err),
		)
	}

	return probeFFprobe(ctx, o.ffprobe, path)
}

func isMP4(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}

	return false
}

func probeMP4File(path string) (Info, error) {
	f, err := os.Open(path) //nolint:gosec // Path is the user-selected video.
	if err != nil {
		return Info{}, err
	}

	defer func() {
		closeErr := f.Close()
		if closeErr != nil {
			slog.Warn("closing video", slog.String("path", path), slog.Any("err", closeErr))
		}
	}()

	return probeMP4(path, f)
}

// probeMP4 derives frame count and rate from the sample tables of the first
// video track. Fragmented files are walked fragment by fragment.
func probeMP4(name string, r io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}

	if moov == nil {
		return Info{}, errors.New("no moov box found")
	}

	var trak *mp4.TrakBox

	for _, t := range moov.Traks {
		if t.Mdia != nil && t.Mdia.Hdlr != nil && t.Mdia.Hdlr.HandlerType == "vide" {
			trak = t

			break
		}
	}

	if trak == nil || trak.Mdia.Mdhd == nil || trak.Mdia.Mdhd.Timescale == 0 {
		return Info{}, errors.New("no video track found")
	}

	info := Info{
		Path:      name,
		Container: "mp4",
		Width:     int(uint32(trak.Tkhd.Width) >> 16),
		Height:    int(uint32(trak.Tkhd.Height) >> 16),
	}

	var stbl *mp4.StblBox
	if trak.Mdia.Minf != nil {
		stbl = trak.Mdia.Minf.Stbl
	}

	if stbl != nil && stbl.Stsd != nil {
		for _, child := range stbl.Stsd.Children {
			vse, ok := child.(*mp4.VisualSampleEntryBox)
			if !ok {
				continue
			}

			info.Codec = vse.Type()
			if info.Width == 0 || info.Height == 0 {
				info.Width = int(vse.Width)
				info.Height = int(vse.Height)
			}

			break
		}
	}

	var (
		samples  int
		duration uint64
	)

	if mp4File.IsFragmented() {
		samples, duration, err = countFragmentSamples(mp4File, trak.Tkhd.TrackID)
		if err != nil {
			return Info{}, err
		}
	} else {
		if stbl == nil || stbl.Stsz == nil {
			return Info{}, errors.New("no stsz box found")
		}

		samples = int(stbl.Stsz.SampleNumber)
		duration = trak.Mdia.Mdhd.Duration
	}

	timescale := float64(trak.Mdia.Mdhd.Timescale)
	info.FrameCount = samples
	info.DurationSeconds = float64(duration) / timescale

	if info.DurationSeconds > 0 {
		info.FrameRate = truncRate(float64(samples) / info.DurationSeconds)
	}

	return info, nil
}

func countFragmentSamples(f *mp4.File, trackID uint32) (int, uint64, error) {
	var trex *mp4.TrexBox

	if f.Init != nil && f.Init.Moov != nil && f.Init.Moov.Mvex != nil {
		for _, t := range f.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t

				break
			}
		}
	}

	var (
		count    int
		duration uint64
	)

	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}

			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}

				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return 0, 0, fmt.Errorf("get samples: %w", err)
				}

				for _, s := range samples {
					duration += uint64(s.Dur)
				}

				count += len(samples)
			}
		}
	}

	return count, duration, nil
}

// ffprobeOutput is the subset of `ffprobe -of json` used by [Probe].
type ffprobeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecName     string `json:"codec_name"`
		RFrameRate    string `json:"r_frame_rate"`
		AvgFrameRate  string `json:"avg_frame_rate"`
		NbFrames      string `json:"nb_frames"`
		NbReadPackets string `json:"nb_read_packets"`
		Width         int    `json:"width"`
		Height        int    `json:"height"`
	} `json:"streams"`
}

func probeFFprobe(ctx context.Context, ffprobe, path string) (Info, error) {
	bin, err := exec.LookPath(ffprobe)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s not found in PATH: install ffmpeg or use a directory of PNG frames instead",
			ErrSourceUnavailable, ffprobe)
	}

	var stderr bytes.Buffer

	//nolint:gosec // path is the user-selected video.
	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=codec_name,width,height,r_frame_rate,avg_frame_rate,nb_frames,nb_read_packets"+
			":format=format_name,duration",
		"-of", "json",
		path,
	)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: %w: %s", ErrSourceUnavailable, path, err, strings.TrimSpace(stderr.String()))
	}

	return parseFFprobe(path, out)
}

func parseFFprobe(path string, data []byte) (Info, error) {
	var out ffprobeOutput

	err := json.Unmarshal(data, &out)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: parsing ffprobe output: %w", ErrSourceUnavailable, path, err)
	}

	if len(out.Streams) == 0 {
		return Info{}, fmt.Errorf("%w: %s: no video stream", ErrSourceUnavailable, path)
	}

	s := out.Streams[0]

	info := Info{
		Path:      path,
		Container: strings.Split(out.Format.FormatName, ",")[0],
		Codec:     s.CodecName,
		Width:     s.Width,
		Height:    s.Height,
	}

	rate := parseRational(s.RFrameRate)
	if rate == 0 {
		rate = parseRational(s.AvgFrameRate)
	}

	info.FrameRate = truncRate(rate)
	info.DurationSeconds, _ = strconv.ParseFloat(out.Format.Duration, 64)

	switch {
	case atoi(s.NbFrames) > 0:
		info.FrameCount = atoi(s.NbFrames)
	case atoi(s.NbReadPackets) > 0:
		info.FrameCount = atoi(s.NbReadPackets)
	default:
		info.FrameCount = int(math.Round(info.DurationSeconds * rate))
	}

	return info, nil
}

// parseRational parses ffprobe rates such as "30000/1001". Malformed or
// undefined ("0/0") rates parse as zero.
func parseRational(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}

		return f
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}

	return n / d
}

// truncRate converts a fractional rate to whole frames per second, dropping
// the fraction (29.97 becomes 29). The small bias absorbs float error in
// exact rates such as 10/0.4.
func truncRate(rate float64) int {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}

	return int(rate + 1e-9)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}
