package audio

// imaStepTable and imaIndexTable are the canonical IMA-ADPCM step/index
// tables (spec.md §4.F, "IMA-ADPCM via the canonical step/index tables"),
// grounded on the original decoder loop in sample_exporter.cpp.
var imaStepTable = [89]int16{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17,
	19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118,
	130, 143, 157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066,
	2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358,
	5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

var imaIndexTable = [16]int8{
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

type imaChannelState struct {
	stepIndex  int16
	predictor  int32
	lastNibble int64
}

// DecodeIMAADPCM decodes data (channel-interleaved nibbles, one byte per
// pair of mono samples or per stereo sample-pair depending on channel
// count) into 16-bit PCM, interleaved per channel if stereo. This mirrors
// the original decoder's nibble-extraction loop: nibble index advances one
// per output sample per channel, reading byte
// `(nibbleIndex/2)*channels + channel` and selecting the low or high
// nibble by parity.
func DecodeIMAADPCM(data []byte, stereo bool) []int16 {
	channels := 1
	if stereo {
		channels = 2
	}
	// Matches sample_exporter.cpp's sample-count derivation: data.size()
	// holds channels*samples/2 bytes (2 nibbles/byte), so the per-channel
	// sample count is data.size()*2/channels.
	amount := len(data) * 2 / channels
	out := make([]int16, amount*channels)

	var state [2]imaChannelState
	for i := range state {
		state[i].lastNibble = -1
	}

	for pos := 0; pos < amount; pos++ {
		for state[0].lastNibble < int64(pos) {
			for ch := 0; ch < channels; ch++ {
				s := &state[ch]
				s.lastNibble++
				srcIndex := int(s.lastNibble>>1)*channels + ch
				if srcIndex >= len(data) {
					continue
				}
				raw := data[srcIndex]
				var nibble uint8
				if s.lastNibble&1 != 0 {
					nibble = raw >> 4
				} else {
					nibble = raw & 0xF
				}

				step := imaStepTable[s.stepIndex]
				s.stepIndex += int16(imaIndexTable[nibble])
				if s.stepIndex < 0 {
					s.stepIndex = 0
				} else if s.stepIndex > 88 {
					s.stepIndex = 88
				}

				diff := int32(step >> 3)
				if nibble&1 != 0 {
					diff += int32(step >> 2)
				}
				if nibble&2 != 0 {
					diff += int32(step >> 1)
				}
				if nibble&4 != 0 {
					diff += int32(step)
				}
				if nibble&8 != 0 {
					diff = -diff
				}

				s.predictor += diff
				if s.predictor < -0x8000 {
					s.predictor = -0x8000
				} else if s.predictor > 0x7FFF {
					s.predictor = 0x7FFF
				}
			}
		}

		out[pos*channels] = int16(state[0].predictor)
		if stereo {
			out[pos*channels+1] = int16(state[1].predictor)
		}
	}
	return out
}
