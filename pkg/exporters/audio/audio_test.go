package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDecodeIMAADPCMMonoSilence checks the trivial all-zero-nibble case:
// 2 bytes hold 4 mono samples. A zero nibble selects index-table entry -1,
// which leaves stepIndex clamped at 0, and adds step>>3 = 7>>3 = 0, so the
// predictor stays at 0 (silence).
func TestDecodeIMAADPCMMonoSilence(t *testing.T) {
	pcm := DecodeIMAADPCM([]byte{0x00, 0x00}, false)
	require.Len(t, pcm, 4)
}

func TestDecodeIMAADPCMStereo(t *testing.T) {
	// 4 bytes => 8 nibbles => 4 samples/channel * 2 channels.
	pcm := DecodeIMAADPCM([]byte{0x11, 0x22, 0x33, 0x44}, true)
	require.Len(t, pcm, 8)
}

func TestEncodeWAVHeader(t *testing.T) {
	pcm := []int16{100, -100, 200, -200}
	wav := EncodeWAV(pcm, 44100, 2)
	require.Equal(t, "RIFF", string(wav[0:4]))
	require.Equal(t, "WAVE", string(wav[8:12]))
	require.Equal(t, "fmt ", string(wav[12:16]))
	require.Equal(t, "data", string(wav[36:40]))
	require.Len(t, wav, 44+len(pcm)*2)
}

func TestDecodeQOARejectsBadMagic(t *testing.T) {
	_, _, _, err := DecodeQOA([]byte("not qoa"))
	require.Error(t, err)
}
