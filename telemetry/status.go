package telemetry

import "math"

// Status is the wire representation of an axis's externally observable
// state (spec.md §7): current_state and the sticky error bitset, plus
// position/velocity for a bench dashboard. axis.Axis builds one of these
// each publish tick; telemetry has no dependency on the axis package.
type Status struct {
	CurrentState  uint8
	RequestedState uint8
	ErrorFlags    uint32
	PosEstimate   float32
	VelEstimate   float32
}

// EncodeStatus serializes a Status into a telemetry frame payload.
func EncodeStatus(s Status) []byte {
	out := NewScratchOutput()
	out.Output([]byte{s.CurrentState, s.RequestedState})
	EncodeVLQUint(out, s.ErrorFlags)
	EncodeVLQUint(out, math.Float32bits(s.PosEstimate))
	EncodeVLQUint(out, math.Float32bits(s.VelEstimate))
	return out.Result()
}

// DecodeStatus deserializes a Status from a telemetry frame payload.
func DecodeStatus(payload []byte) (Status, error) {
	if len(payload) < 2 {
		return Status{}, ErrFrameTooShort
	}
	s := Status{CurrentState: payload[0], RequestedState: payload[1]}
	rest := payload[2:]

	errFlags, err := DecodeVLQUint(&rest)
	if err != nil {
		return Status{}, err
	}
	s.ErrorFlags = errFlags

	posBits, err := DecodeVLQUint(&rest)
	if err != nil {
		return Status{}, err
	}
	s.PosEstimate = math.Float32frombits(posBits)

	velBits, err := DecodeVLQUint(&rest)
	if err != nil {
		return Status{}, err
	}
	s.VelEstimate = math.Float32frombits(velBits)

	return s, nil
}
