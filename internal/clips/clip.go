package clips

import (
	"fmt"
	"math/big"
	"time"

	"github.com/kikiluvv/autocut/internal/boolarr"
	"github.com/kikiluvv/autocut/pkg/util"
)

// Clip is one run of frames that are all kept or all cut
type Clip struct {
	ID         string        `json:"id" yaml:"id"`
	StartFrame int           `json:"start_frame" yaml:"start_frame"`
	EndFrame   int           `json:"end_frame" yaml:"end_frame"`
	Start      time.Duration `json:"start" yaml:"start"`
	End        time.Duration `json:"end" yaml:"end"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Keep       bool          `json:"keep" yaml:"keep"`
	SourceURL  string        `json:"source" yaml:"source"`
}

// Frames returns the number of frames in the clip
func (c *Clip) Frames() int {
	return c.EndFrame - c.StartFrame
}

// FromChunk converts a frame range to a clip with wall-clock bounds
func FromChunk(id string, ch boolarr.Chunk, timebase *big.Rat, source string) *Clip {
	start := util.FramesToDuration(int64(ch.Start), timebase)
	end := util.FramesToDuration(int64(ch.End), timebase)
	return &Clip{
		ID:         id,
		StartFrame: ch.Start,
		EndFrame:   ch.End,
		Start:      start,
		End:        end,
		Duration:   end - start,
		Keep:       ch.Keep,
		SourceURL:  source,
	}
}

// Manager holds the clips of one edit decision in frame order
type Manager struct {
	clips []*Clip
}

// NewManager creates a new clip manager
func NewManager() *Manager {
	return &Manager{
		clips: make([]*Clip, 0),
	}
}

// FromDecision splits a per-frame keep array into clips
func FromDecision(decision []bool, timebase *big.Rat, source string) *Manager {
	m := NewManager()
	for i, ch := range boolarr.Chunks(decision) {
		m.Add(FromChunk(fmt.Sprintf("clip_%d", i), ch, timebase, source))
	}
	return m
}

// Add adds a clip to the manager
func (m *Manager) Add(clip *Clip) {
	m.clips = append(m.clips, clip)
}

// Get retrieves a clip by ID
func (m *Manager) Get(id string) *Clip {
	for _, clip := range m.clips {
		if clip.ID == id {
			return clip
		}
	}
	return nil
}

// All returns all clips
func (m *Manager) All() []*Clip {
	return m.clips
}

// Kept returns the clips that survive the edit
func (m *Manager) Kept() []*Clip {
	var kept []*Clip
	for _, clip := range m.clips {
		if clip.Keep {
			kept = append(kept, clip)
		}
	}
	return kept
}

// Stats summarises an edit decision
type Stats struct {
	Clips        int           `json:"clips" yaml:"clips"`
	KeptClips    int           `json:"kept_clips" yaml:"kept_clips"`
	TotalFrames  int           `json:"total_frames" yaml:"total_frames"`
	KeptFrames   int           `json:"kept_frames" yaml:"kept_frames"`
	KeptDuration time.Duration `json:"kept_duration" yaml:"kept_duration"`
}

// KeptRatio is the fraction of frames kept, 0 for an empty edit
func (s Stats) KeptRatio() float64 {
	if s.TotalFrames == 0 {
		return 0
	}
	return float64(s.KeptFrames) / float64(s.TotalFrames)
}

// Stats counts kept and cut frames
func (m *Manager) Stats() Stats {
	var s Stats
	for _, clip := range m.clips {
		s.Clips++
		s.TotalFrames += clip.Frames()
		if clip.Keep {
			s.KeptClips++
			s.KeptFrames += clip.Frames()
			s.KeptDuration += clip.Duration
		}
	}
	return s
}
