package video

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Metadata is the container information of a video.
type Metadata struct {
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int64   `json:"bitrate"`
	Resolution string  `json:"resolution"`
	FPS        string  `json:"fps"`
	Format     string  `json:"format"`
	Frames     int     `json:"-"`
}

// FrameSource decodes videos into evenly spaced grayscale frames.
type FrameSource interface {
	Available() bool
	Metadata(ctx context.Context, path string) (*Metadata, error)
	Frames(ctx context.Context, path string, meta *Metadata, maxFrames int) ([]*image.Gray, error)
}

const probeTimeout = 30 * time.Second

// FFmpegSource shells out to ffprobe and ffmpeg.
type FFmpegSource struct {
	FFmpeg   string
	FFprobe  string
	MaxWidth int
}

// NewFFmpegSource creates a source using the binaries on PATH unless paths
// are given. Frames wider than maxWidth are scaled down.
func NewFFmpegSource(ffmpeg, ffprobe string, maxWidth int) *FFmpegSource {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &FFmpegSource{FFmpeg: ffmpeg, FFprobe: ffprobe, MaxWidth: maxWidth}
}

// Available reports whether both binaries can be found.
func (s *FFmpegSource) Available() bool {
	if _, err := exec.LookPath(s.FFmpeg); err != nil {
		return false
	}
	_, err := exec.LookPath(s.FFprobe)
	return err == nil
}

type probeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		BitRate    string `json:"bit_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
}

// Metadata runs ffprobe on path.
func (s *FFmpegSource) Metadata(ctx context.Context, path string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.FFprobe, "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running ffprobe: %w", err)
	}
	return parseProbe(out)
}

func parseProbe(data []byte) (*Metadata, error) {
	var p probeOutput
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	m := &Metadata{
		Codec:      "unknown",
		FPS:        "unknown",
		Resolution: "0x0",
		Format:     p.Format.FormatName,
	}
	if m.Format == "" {
		m.Format = "unknown"
	}
	m.Duration, _ = strconv.ParseFloat(p.Format.Duration, 64)

	for _, st := range p.Streams {
		if st.CodecType != "video" {
			continue
		}
		m.Codec = st.CodecName
		m.Resolution = fmt.Sprintf("%dx%d", st.Width, st.Height)
		m.FPS = st.RFrameRate
		m.Bitrate, _ = strconv.ParseInt(st.BitRate, 10, 64)
		m.Frames, _ = strconv.Atoi(st.NbFrames)
		if m.Frames == 0 && m.Duration > 0 {
			m.Frames = int(m.Duration * frameRate(st.RFrameRate))
		}
		break
	}
	return m, nil
}

// frameRate parses an ffprobe rate such as "30000/1001".
func frameRate(r string) float64 {
	num, den, ok := strings.Cut(r, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// Frames decodes at most maxFrames frames, evenly spaced over the frame count
// reported in meta.
func (s *FFmpegSource) Frames(ctx context.Context, path string, meta *Metadata, maxFrames int) ([]*image.Gray, error) {
	step := 1
	if meta != nil && meta.Frames > maxFrames && maxFrames > 0 {
		step = meta.Frames / maxFrames
	}

	filters := []string{fmt.Sprintf(`select=not(mod(n\,%d))`, step)}
	if s.MaxWidth > 0 {
		filters = append(filters, fmt.Sprintf("scale='min(%d,iw)':-2", s.MaxWidth))
	}
	filters = append(filters, "format=gray")

	cmd := exec.CommandContext(ctx, s.FFmpeg,
		"-v", "error",
		"-i", path,
		"-vf", strings.Join(filters, ","),
		"-vsync", "vfr",
		"-frames:v", strconv.Itoa(maxFrames),
		"-f", "image2pipe",
		"-vcodec", "pgm",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return DecodePGMStream(bytes.NewReader(out))
}

// DecodePGMStream reads consecutive binary PGM (P5) images.
func DecodePGMStream(r io.Reader) ([]*image.Gray, error) {
	br := bufio.NewReader(r)
	var frames []*image.Gray
	for {
		if _, err := br.Peek(1); errors.Is(err, io.EOF) {
			return frames, nil
		}
		img, err := decodePGM(br)
		if err != nil {
			return frames, fmt.Errorf("decoding frame %d: %w", len(frames), err)
		}
		frames = append(frames, img)
	}
}

func decodePGM(br *bufio.Reader) (*image.Gray, error) {
	magic, err := pgmToken(br)
	if err != nil {
		return nil, err
	}
	if magic != "P5" {
		return nil, fmt.Errorf("unsupported image format %q", magic)
	}

	var dims [3]int
	for i := range dims {
		tok, err := pgmToken(br)
		if err != nil {
			return nil, err
		}
		if dims[i], err = strconv.Atoi(tok); err != nil {
			return nil, fmt.Errorf("invalid header value %q", tok)
		}
	}
	w, h, maxval := dims[0], dims[1], dims[2]
	if w <= 0 || h <= 0 || maxval <= 0 || maxval > 255 {
		return nil, fmt.Errorf("unsupported header %dx%d maxval %d", w, h, maxval)
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	if _, err := io.ReadFull(br, img.Pix); err != nil {
		return nil, fmt.Errorf("reading pixels: %w", err)
	}
	return img, nil
}

// pgmToken reads one whitespace-delimited header token, skipping comments,
// and consumes the single whitespace byte that ends it.
func pgmToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if len(tok) > 0 && errors.Is(err, io.EOF) {
				return string(tok), nil
			}
			return "", err
		}
		switch {
		case c == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", err
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, c)
		}
	}
}
