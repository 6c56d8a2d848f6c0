package analyze

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"math/big"
	"math/rand"
	"time"

	"github.com/nfnt/resize"
)

const readBlock = 64 * 1024

// AudioLevels reads interleaved s16le PCM and returns one level per frame
// at the given timebase: the frame's peak amplitude divided by the peak of
// the whole stream. A silent stream yields all zeros. When frames is
// positive the result has exactly that length.
func AudioLevels(r io.Reader, sampleRate, channels int, timebase *big.Rat, frames int) ([]float64, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid pcm format: %d Hz, %d channels", sampleRate, channels)
	}
	if timebase == nil || timebase.Sign() <= 0 {
		return nil, fmt.Errorf("invalid timebase")
	}

	// sample s belongs to frame s*num / (rate*den)
	num := timebase.Num().Int64()
	den := new(big.Int).Mul(big.NewInt(int64(sampleRate)), timebase.Denom()).Int64()

	frameBytes := 2 * channels
	buf := make([]byte, readBlock-readBlock%frameBytes)
	var (
		peaks  []float64
		sample int64
		peak   float64
	)
	for {
		n, err := io.ReadFull(r, buf)
		n -= n % frameBytes
		for off := 0; off < n; off += frameBytes {
			idx := int(sample * num / den)
			if frames > 0 && idx >= frames {
				break
			}
			for idx >= len(peaks) {
				peaks = append(peaks, 0)
			}
			for c := 0; c < channels; c++ {
				v := int16(binary.LittleEndian.Uint16(buf[off+2*c:]))
				a := float64(v)
				if a < 0 {
					a = -a
				}
				if a > peaks[idx] {
					peaks[idx] = a
				}
				if a > peak {
					peak = a
				}
			}
			sample++
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading pcm: %w", err)
		}
	}

	if peak > 0 {
		for i := range peaks {
			peaks[i] /= peak
		}
	}
	return fit(peaks, frames), nil
}

// MotionLevels reads consecutive gray frames of srcW*srcH bytes, shrinks
// each to width*height and returns, per frame, the fraction of pixels that
// changed since the previous frame. The first frame has level 0.
func MotionLevels(r io.Reader, srcW, srcH, width, height, frames int) ([]float64, error) {
	if srcW <= 0 || srcH <= 0 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d -> %dx%d", srcW, srcH, width, height)
	}
	src := image.NewGray(image.Rect(0, 0, srcW, srcH))
	read := func(dst []byte) error {
		if _, err := io.ReadFull(r, src.Pix); err != nil {
			return err
		}
		if srcW == width && srcH == height {
			copy(dst, src.Pix)
			return nil
		}
		copyGray(dst, resize.Resize(uint(width), uint(height), src, resize.Bilinear), width)
		return nil
	}

	levels, err := diffFrames(read, width*height, 1, frames)
	if err != nil {
		return nil, err
	}
	total := float64(width * height)
	for i := range levels {
		levels[i] /= total
	}
	return levels, nil
}

// copyGray writes the luma of img row by row into dst
func copyGray(dst []byte, img image.Image, width int) {
	g, ok := img.(*image.Gray)
	if !ok {
		g = image.NewGray(img.Bounds())
		draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	for y := 0; y < g.Rect.Dy(); y++ {
		copy(dst[y*width:(y+1)*width], g.Pix[y*g.Stride:])
	}
}

// PixeldiffLevels reads raw frames with bpp bytes per pixel and returns the
// number of pixels that differ from the previous frame.
func PixeldiffLevels(r io.Reader, width, height, bpp, frames int) ([]float64, error) {
	read := func(dst []byte) error {
		_, err := io.ReadFull(r, dst)
		return err
	}
	return diffFrames(read, width*height*bpp, bpp, frames)
}

// RandomLevels returns n uniform samples in [0, 1). A negative seed seeds
// from the clock.
func RandomLevels(n int, seed int64) []float64 {
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	levels := make([]float64, n)
	for i := range levels {
		levels[i] = rng.Float64()
	}
	return levels
}

// diffFrames counts changed pixels between frames filled by read. An EOF
// from read ends the stream.
func diffFrames(read func([]byte) error, frameSize, bpp, frames int) ([]float64, error) {
	if frameSize <= 0 || bpp <= 0 {
		return nil, fmt.Errorf("invalid frame size %d", frameSize)
	}
	prev := make([]byte, frameSize)
	cur := make([]byte, frameSize)
	var levels []float64
	for first := true; frames <= 0 || len(levels) < frames; first = false {
		if err := read(cur); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("reading frame %d: %w", len(levels), err)
		}
		changed := 0
		if !first {
			for p := 0; p < frameSize; p += bpp {
				for b := p; b < p+bpp; b++ {
					if cur[b] != prev[b] {
						changed++
						break
					}
				}
			}
		}
		levels = append(levels, float64(changed))
		prev, cur = cur, prev
	}
	return fit(levels, frames), nil
}

// fit pads with zeros or truncates to n when n is positive
func fit(levels []float64, n int) []float64 {
	if n <= 0 || len(levels) == n {
		return levels
	}
	if len(levels) > n {
		return levels[:n]
	}
	return append(levels, make([]float64, n-len(levels))...)
}
