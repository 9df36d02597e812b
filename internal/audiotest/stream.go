// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"github.com/ik5/otodecks/audio"
)

// streamSource hides everything but audio.Source, so a clip reads like a
// streaming decoder with no length hint.
type streamSource struct {
	clip  *audio.Clip
	chunk int
}

// Stream returns clip as a plain audio.Source. A positive chunk caps the
// frames returned per ReadSamples call, like decoders that read one packet
// at a time.
func Stream(clip *audio.Clip, chunk int) audio.Source {
	return &streamSource{clip: clip, chunk: chunk}
}

func (s *streamSource) SampleRate() int { return s.clip.SampleRate() }
func (s *streamSource) Channels() int   { return s.clip.Channels() }
func (s *streamSource) Close() error    { return s.clip.Close() }

func (s *streamSource) ReadSamples(dst []float32) (int, error) {
	if s.chunk > 0 {
		dst = dst[:min(len(dst), s.chunk*s.clip.Channels())]
	}

	return s.clip.ReadSamples(dst)
}
