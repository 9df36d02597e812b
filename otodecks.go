// SPDX-License-Identifier: EPL-2.0

package otodecks

import (
	"github.com/ik5/otodecks/audio"
	"github.com/ik5/otodecks/formats/aiff"
	"github.com/ik5/otodecks/formats/flac"
	"github.com/ik5/otodecks/formats/mp3"
	"github.com/ik5/otodecks/formats/vorbis"
	"github.com/ik5/otodecks/formats/wav"
	"github.com/ik5/otodecks/utils"
)

// NewRegistry returns a registry with every bundled decoder registered
// under its file extensions.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()

	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("flac", flac.Decoder{})

	return r
}

// BlockSource is anything that fills a block on demand, such as an
// engine.Mixer or engine.Player.
type BlockSource interface {
	PullBlock(dst []float32)
}

// renderPrealloc caps the frames Render reserves up front.
const renderPrealloc = 1 << 16

// RenderTo pulls blockFrames-sized blocks from src, converts them to
// interleaved 16-bit PCM and hands each one to sink. It stops after
// maxFrames frames, after the first block for which done reports true, or
// on the first sink error. A nil done never stops early. sink must not keep
// the slice it is given.
//
// src must already be prepared for blockFrames. RenderTo returns the number
// of frames handed to sink.
func RenderTo(src BlockSource, channels, blockFrames int, maxFrames int64, done func() bool, sink func(pcm []int16) error) (int64, error) {
	if channels <= 0 || blockFrames <= 0 || maxFrames <= 0 {
		return 0, nil
	}

	block := make([]float32, blockFrames*channels)
	pcm := make([]int16, blockFrames*channels)

	var frames int64
	for frames < maxFrames {
		n := min(int64(blockFrames), maxFrames-frames)
		piece := block[:n*int64(channels)]
		src.PullBlock(piece)

		out := pcm[:len(piece)]
		for i, v := range piece {
			out[i] = utils.Float32ToInt16(v)
		}
		if err := sink(out); err != nil {
			return frames, err
		}
		frames += n

		if done != nil && done() {
			break
		}
	}

	return frames, nil
}

// Render is RenderTo collecting everything into one slice.
func Render(src BlockSource, channels, blockFrames int, maxFrames int64, done func() bool) []int16 {
	if channels <= 0 || blockFrames <= 0 || maxFrames <= 0 {
		return nil
	}

	out := make([]int16, 0, min(maxFrames, renderPrealloc)*int64(channels))
	_, _ = RenderTo(src, channels, blockFrames, maxFrames, done, func(pcm []int16) error {
		out = append(out, pcm...)
		return nil
	})

	return out
}
