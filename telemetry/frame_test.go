package telemetry

import "testing"

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	frame := EncodeFrame(payload)

	decoded, consumed, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if consumed != len(frame) {
		t.Fatalf("expected to consume %d bytes, got %d", len(frame), consumed)
	}
	if len(decoded) != len(payload) {
		t.Fatalf("expected payload length %d, got %d", len(payload), len(decoded))
	}
	for i := range payload {
		if decoded[i] != payload[i] {
			t.Fatalf("payload mismatch at %d: want %d got %d", i, payload[i], decoded[i])
		}
	}
}

func TestDecodeFrameRejectsBadCRC(t *testing.T) {
	frame := EncodeFrame([]byte{9, 9, 9})
	frame[len(frame)-2] ^= 0xFF // corrupt CRC low byte

	if _, _, err := DecodeFrame(frame); err != ErrFrameCRC {
		t.Fatalf("expected ErrFrameCRC, got %v", err)
	}
}

func TestDecodeFrameRejectsShortInput(t *testing.T) {
	if _, _, err := DecodeFrame([]byte{1, 2}); err != ErrFrameTooShort {
		t.Fatalf("expected ErrFrameTooShort, got %v", err)
	}
}

func TestDecodeFrameRejectsMissingSync(t *testing.T) {
	frame := EncodeFrame([]byte{1})
	frame[len(frame)-1] = 0x00

	if _, _, err := DecodeFrame(frame); err != ErrFrameSync {
		t.Fatalf("expected ErrFrameSync, got %v", err)
	}
}
