package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/resource"
	"github.com/gdretool/gdre-go/pkg/variant"
)

// SampleFormat mirrors the engine's AudioStreamWAV compression modes
// (spec.md §4.F: "PCM 8/16 bit paths are lossless... IMA-ADPCM... QOA").
type SampleFormat int

const (
	Format8Bit SampleFormat = iota
	Format16Bit
	FormatIMAADPCM
	FormatQOA
)

// Sample is the decoded content of one AudioStreamWAV/AudioStreamSample
// resource, parsed from its binary form.
type Sample struct {
	Format    SampleFormat
	MixRate   int
	Stereo    bool
	LoopMode  int
	LoopBegin int
	LoopEnd   int
	Data      []byte
}

// ParseSample reads the AudioStreamWAV properties out of a decoded
// resource (spec.md §4.F; property names follow the engine's own
// AudioStreamWAV/AudioStreamSample class).
func ParseSample(r *resource.Resource) (*Sample, error) {
	s := &Sample{}
	if v, ok := r.Get("format"); ok {
		s.Format = SampleFormat(v.Int)
	}
	if v, ok := r.Get("mix_rate"); ok {
		s.MixRate = int(v.Int)
	} else {
		s.MixRate = 44100
	}
	if v, ok := r.Get("stereo"); ok {
		s.Stereo = v.Bool
	}
	if v, ok := r.Get("loop_mode"); ok {
		s.LoopMode = int(v.Int)
	}
	if v, ok := r.Get("loop_begin"); ok {
		s.LoopBegin = int(v.Int)
	}
	if v, ok := r.Get("loop_end"); ok {
		s.LoopEnd = int(v.Int)
	}
	data, ok := r.Get("data")
	if !ok || data.Kind != variant.KindPackedByteArray {
		return nil, fmt.Errorf("%w: sample resource has no data", gdreerrors.ErrCorruptHeader)
	}
	s.Data = data.PackedBytes
	return s, nil
}

// decodeResult is the uniform shape every format path below reduces to:
// interleaved 16-bit PCM plus whether the conversion lost information.
type decodeResult struct {
	pcm  []int16
	loss gdreerrors.LossType
}

// Decode16Bit converts s to interleaved 16-bit PCM (spec.md §4.F: "Decodes
// engine formats into 16-bit PCM"), reporting LossStored when the source
// format was itself lossy (IMA-ADPCM, QOA) since that information can
// never be recovered, regardless of how faithfully the decode ran.
func Decode16Bit(s *Sample) (decodeResult, error) {
	switch s.Format {
	case Format8Bit:
		pcm := make([]int16, len(s.Data))
		for i, b := range s.Data {
			pcm[i] = int16(int8(b)) << 8
		}
		return decodeResult{pcm: pcm, loss: gdreerrors.LossNone}, nil
	case Format16Bit:
		pcm := make([]int16, len(s.Data)/2)
		for i := range pcm {
			pcm[i] = int16(binary.LittleEndian.Uint16(s.Data[i*2:]))
		}
		return decodeResult{pcm: pcm, loss: gdreerrors.LossNone}, nil
	case FormatIMAADPCM:
		return decodeResult{pcm: DecodeIMAADPCM(s.Data, s.Stereo), loss: gdreerrors.LossStored}, nil
	case FormatQOA:
		pcm, _, _, err := DecodeQOA(s.Data)
		if err != nil {
			return decodeResult{}, err
		}
		return decodeResult{pcm: pcm, loss: gdreerrors.LossStored}, nil
	default:
		return decodeResult{}, fmt.Errorf("%w: unknown sample format %d", gdreerrors.ErrUnavailable, s.Format)
	}
}

// EncodeWAV writes a conforming RIFF/WAVE container around 16-bit PCM data
// (spec.md §4.F: "Writes a RIFF/WAVE file with a conforming header").
func EncodeWAV(pcm []int16, sampleRate int, channels int) []byte {
	dataSize := len(pcm) * 2
	blockAlign := channels * 2
	byteRate := sampleRate * blockAlign

	buf := make([]byte, 0, 44+dataSize)
	buf = append(buf, 'R', 'I', 'F', 'F')
	buf = appendU32(buf, uint32(36+dataSize))
	buf = append(buf, 'W', 'A', 'V', 'E')

	buf = append(buf, 'f', 'm', 't', ' ')
	buf = appendU32(buf, 16)
	buf = appendU16(buf, 1) // PCM
	buf = appendU16(buf, uint16(channels))
	buf = appendU32(buf, uint32(sampleRate))
	buf = appendU32(buf, uint32(byteRate))
	buf = appendU16(buf, uint16(blockAlign))
	buf = appendU16(buf, 16) // bits per sample

	buf = append(buf, 'd', 'a', 't', 'a')
	buf = appendU32(buf, uint32(dataSize))
	for _, s := range pcm {
		buf = appendU16(buf, uint16(s))
	}
	return buf
}

func appendU16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}
