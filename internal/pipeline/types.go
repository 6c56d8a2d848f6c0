package pipeline

import (
	"time"

	"github.com/kikiluvv/autocut/internal/clips"
)

// Project is the result of editing one input: the decision split into
// clips, ready for export or render.
type Project struct {
	Name        string                 `json:"name" yaml:"name"`
	InputPath   string                 `json:"input" yaml:"input"`
	Expression  string                 `json:"expression" yaml:"expression"`
	Timebase    string                 `json:"timebase" yaml:"timebase"`
	TotalFrames int                    `json:"total_frames" yaml:"total_frames"`
	Clips       []*clips.Clip          `json:"clips" yaml:"clips"`
	Stats       clips.Stats            `json:"stats" yaml:"stats"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at" yaml:"created_at"`

	decision []bool
}

// Decision returns the per-frame keep array the project was built from
func (p *Project) Decision() []bool {
	return p.decision
}

// Kept returns the clips that survive the edit
func (p *Project) Kept() []*clips.Clip {
	var kept []*clips.Clip
	for _, c := range p.Clips {
		if c.Keep {
			kept = append(kept, c)
		}
	}
	return kept
}

// AnalyzeOptions configures one edit. Empty fields fall back to the
// pipeline config.
type AnalyzeOptions struct {
	Expression string
	Margin     string
	MinClip    string
	MinCut     string
	Strict     bool

	// Range marks are applied after margin and cook: MarkSilent first,
	// then MarkLoud, then CutOut, so a cut-out range always goes.
	MarkLoud   []Range
	MarkSilent []Range
	CutOut     []Range
}

// RenderOptions configures render behavior
type RenderOptions struct {
	OutputPath string
	Quality    int // CRF value
	Preset     string
	VideoCodec string
	AudioCodec string
	CopyCodec  bool
}

// BatchOptions configures a multi-input run
type BatchOptions struct {
	Analyze AnalyzeOptions
	// Export writes the cut list next to each input when set ("json" or "yaml")
	Export string
	Render bool
	// OutputDir receives rendered files; empty writes next to the input
	OutputDir string
}

// Result is the outcome of one input in a batch
type Result struct {
	Input      string
	Project    *Project
	ExportPath string
	OutputPath string
	Err        error
}

// Config holds pipeline-specific configuration
type Config struct {
	Workers int
	// TempDir holds intermediate clips while rendering. Empty uses the
	// system temp dir.
	TempDir string
	// Suffix names outputs: in.mp4 becomes in<Suffix>.mp4
	Suffix string

	Expression string
	Margin     string
	MinClip    string
	MinCut     string
	Strict     bool

	SampleRate int
	Channels   int
}
