package capture

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAV_Header(t *testing.T) {
	samples := []float32{0.0, 0.5, -0.5, 1.0}
	data := EncodeWAV(samples, 16000)

	if len(data) != 44+len(samples)*2 {
		t.Fatalf("encoded size = %v, want %v", len(data), 44+len(samples)*2)
	}

	if string(data[0:4]) != "RIFF" {
		t.Errorf("missing RIFF marker: %q", data[0:4])
	}
	if string(data[8:12]) != "WAVE" {
		t.Errorf("missing WAVE marker: %q", data[8:12])
	}
	if string(data[12:16]) != "fmt " {
		t.Errorf("missing fmt chunk: %q", data[12:16])
	}
	if string(data[36:40]) != "data" {
		t.Errorf("missing data chunk: %q", data[36:40])
	}

	// PCM format, mono, 16-bit
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 1 {
		t.Errorf("audio format = %v, want 1 (PCM)", format)
	}
	if channels := binary.LittleEndian.Uint16(data[22:24]); channels != 1 {
		t.Errorf("channels = %v, want 1", channels)
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 16000 {
		t.Errorf("sample rate = %v, want 16000", rate)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		t.Errorf("bits per sample = %v, want 16", bits)
	}

	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if dataSize != uint32(len(samples)*2) {
		t.Errorf("data size = %v, want %v", dataSize, len(samples)*2)
	}
}

func TestEncodeWAV_Clamping(t *testing.T) {
	data := EncodeWAV([]float32{2.0, -2.0}, 16000)

	first := int16(binary.LittleEndian.Uint16(data[44:46]))
	second := int16(binary.LittleEndian.Uint16(data[46:48]))

	if first != 32767 {
		t.Errorf("over-range sample = %v, want 32767", first)
	}
	if second != -32767 {
		t.Errorf("under-range sample = %v, want -32767", second)
	}
}

func TestEncodeWAV_Empty(t *testing.T) {
	data := EncodeWAV(nil, 16000)
	if len(data) != 44 {
		t.Errorf("empty encode size = %v, want 44 (header only)", len(data))
	}
}
