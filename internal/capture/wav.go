package capture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// wavHeader is the canonical 44-byte RIFF header for mono 16-bit PCM.
type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// EncodeWAV wraps mono 16-bit samples in a WAV container.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, errors.New("cannot encode empty audio")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	dataSize := uint32(len(samples) * 2)
	h := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   1,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("writing wav header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("writing wav data: %w", err)
	}
	return buf.Bytes(), nil
}
