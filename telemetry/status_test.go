package telemetry

import "testing"

func TestStatusEncodeDecodeRoundTrip(t *testing.T) {
	s := Status{
		CurrentState:   3,
		RequestedState: 0,
		ErrorFlags:     0x00010002,
		PosEstimate:    -12.5,
		VelEstimate:    3.75,
	}

	payload := EncodeStatus(s)
	decoded, err := DecodeStatus(payload)
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	if decoded != s {
		t.Fatalf("round-trip mismatch: got %+v want %+v", decoded, s)
	}
}

func TestStatusOverFrame(t *testing.T) {
	s := Status{CurrentState: 8, ErrorFlags: 1}
	frame := EncodeFrame(EncodeStatus(s))

	payload, _, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	decoded, err := DecodeStatus(payload)
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	if decoded.CurrentState != 8 || decoded.ErrorFlags != 1 {
		t.Fatalf("unexpected decoded status: %+v", decoded)
	}
}
