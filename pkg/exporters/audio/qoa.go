package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
)

// Quite OK Audio decode tables (spec.md §4.F: "QOA via the published
// decoder"). QOA is a public-domain lossy codec; these tables are fixed by
// its specification, not configurable.
var qoaDequantTab = [16][8]int32{
	{1, -1, 3, -3, 5, -5, 7, -7},
	{5, -5, 18, -18, 32, -32, 49, -49},
	{16, -16, 53, -53, 95, -95, 147, -147},
	{34, -34, 113, -113, 203, -203, 315, -315},
	{63, -63, 210, -210, 378, -378, 588, -588},
	{104, -104, 345, -345, 621, -621, 966, -966},
	{158, -158, 528, -528, 950, -950, 1477, -1477},
	{228, -228, 760, -760, 1368, -1368, 2128, -2128},
	{316, -316, 1053, -1053, 1895, -1895, 2947, -2947},
	{422, -422, 1405, -1405, 2529, -2529, 3934, -3934},
	{548, -548, 1828, -1828, 3290, -3290, 5117, -5117},
	{696, -696, 2320, -2320, 4176, -4176, 6496, -6496},
	{868, -868, 2893, -2893, 5207, -5207, 8099, -8099},
	{1064, -1064, 3548, -3548, 6386, -6386, 9933, -9933},
	{1286, -1286, 4288, -4288, 7718, -7718, 12005, -12005},
	{1536, -1536, 5120, -5120, 9216, -9216, 14336, -14336},
}

const qoaSliceLen = 20
const qoaLMSLen = 4

type qoaLMS struct {
	history [qoaLMSLen]int32
	weights [qoaLMSLen]int32
}

func (l *qoaLMS) predict() int32 {
	var p int32
	for i := 0; i < qoaLMSLen; i++ {
		p += l.history[i] * l.weights[i]
	}
	return p >> 13
}

func (l *qoaLMS) update(sample, residual int32) {
	delta := residual >> 4
	for i := 0; i < qoaLMSLen; i++ {
		if l.history[i] < 0 {
			l.weights[i] -= delta
		} else {
			l.weights[i] += delta
		}
	}
	copy(l.history[:qoaLMSLen-1], l.history[1:])
	l.history[qoaLMSLen-1] = sample
}

func clampS16(v int32) int16 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return int16(v)
}

// qoaMagic is the 4-byte file magic ("qoaf").
var qoaMagic = [4]byte{'q', 'o', 'a', 'f'}

// DecodeQOA decodes a complete QOA file into interleaved 16-bit PCM,
// returning the sample data, channel count, and sample rate.
func DecodeQOA(data []byte) (samples []int16, channels int, sampleRate int, err error) {
	if len(data) < 8 || [4]byte{data[0], data[1], data[2], data[3]} != qoaMagic {
		return nil, 0, 0, fmt.Errorf("%w: not a QOA stream", gdreerrors.ErrCorruptHeader)
	}
	totalSamples := int(binary.BigEndian.Uint32(data[4:8]))
	pos := 8

	out := make([]int16, 0, totalSamples*2)
	decodedSamples := 0

	for pos < len(data) && decodedSamples < totalSamples {
		if len(data)-pos < 8 {
			break
		}
		ch := int(data[pos])
		rate := int(data[pos+1])<<16 | int(data[pos+2])<<8 | int(data[pos+3])
		fsamples := int(data[pos+4])<<8 | int(data[pos+5])
		fsize := int(data[pos+6])<<8 | int(data[pos+7])
		if channels == 0 {
			channels = ch
			sampleRate = rate
		}
		if ch == 0 || fsize == 0 {
			break
		}
		frameStart := pos
		pos += 8

		lms := make([]qoaLMS, ch)
		for c := 0; c < ch; c++ {
			for i := 0; i < qoaLMSLen; i++ {
				lms[c].history[i] = int32(int16(binary.BigEndian.Uint16(data[pos : pos+2])))
				pos += 2
			}
			for i := 0; i < qoaLMSLen; i++ {
				lms[c].weights[i] = int32(int16(binary.BigEndian.Uint16(data[pos : pos+2])))
				pos += 2
			}
		}

		numSlices := (fsamples + qoaSliceLen - 1) / qoaSliceLen
		frameSamples := make([][]int16, ch)
		for c := range frameSamples {
			frameSamples[c] = make([]int16, 0, fsamples)
		}

		for s := 0; s < numSlices; s++ {
			for c := 0; c < ch; c++ {
				if pos+8 > len(data) {
					break
				}
				slice := binary.BigEndian.Uint64(data[pos : pos+8])
				pos += 8
				scalefactor := (slice >> 60) & 0xf
				slice <<= 4
				remaining := fsamples - s*qoaSliceLen
				if remaining > qoaSliceLen {
					remaining = qoaSliceLen
				}
				for i := 0; i < remaining; i++ {
					predicted := lms[c].predict()
					quantized := (slice >> 61) & 0x7
					slice <<= 3
					dequantized := qoaDequantTab[scalefactor][quantized]
					reconstructed := clampS16(predicted + dequantized)
					lms[c].update(int32(reconstructed), dequantized)
					frameSamples[c] = append(frameSamples[c], reconstructed)
				}
			}
		}

		for i := 0; i < fsamples; i++ {
			for c := 0; c < ch; c++ {
				if i < len(frameSamples[c]) {
					out = append(out, frameSamples[c][i])
				} else {
					out = append(out, 0)
				}
			}
		}
		decodedSamples += fsamples
		pos = frameStart + fsize
	}

	return out, channels, sampleRate, nil
}
