package audio

import (
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV renders the decoded buffer as a 16-bit mono WAV file, the
// stable export surface consumed by clients that cannot play raw PCM.
func EncodeWAV(buf *Buffer) ([]byte, error) {
	if buf == nil {
		return nil, ErrNoBuffer
	}

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		v := int(s * 32768)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		data[i] = v
	}

	var out wavBuffer
	enc := wav.NewEncoder(&out, buf.SampleRate, 16, 1, 1)
	intBuf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(intBuf); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize wav: %w", err)
	}
	return out.data, nil
}

// wavBuffer is the in-memory WriteSeeker the wav encoder needs to patch
// chunk sizes on Close.
type wavBuffer struct {
	data []byte
	pos  int
}

func (b *wavBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *wavBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("unsupported whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position %d", pos)
	}
	b.pos = int(pos)
	return pos, nil
}
