// Package telemetry publishes axis state to an external observer over a
// framed serial link: length-prefixed, VLQ-encoded fields, CRC16-protected,
// sync-byte delimited. Adapted from protocol/transport.go's bidirectional
// command transport, trimmed to the axis's actual need — a one-way status
// publish, with no host-to-axis command channel — since spec.md §7 only
// requires external observers to poll current_state and error_, never to
// issue commands over this link.
package telemetry

import "errors"

const (
	MessageMax  = 512
	frameSync   = 0x7E
	frameHeader = 1 // length byte
	frameCRC    = 2
	frameTail   = 1 // trailing sync byte
	frameMin    = frameHeader + frameCRC + frameTail
)

var ErrFrameTooShort = errors.New("telemetry: frame too short")
var ErrFrameCRC = errors.New("telemetry: frame CRC mismatch")
var ErrFrameSync = errors.New("telemetry: frame missing trailing sync byte")

// EncodeFrame wraps payload in a length-prefixed, CRC16-protected frame:
// [len][payload...][crc_hi][crc_lo][sync].
func EncodeFrame(payload []byte) []byte {
	out := NewScratchOutput()
	total := frameHeader + len(payload) + frameCRC + frameTail
	out.Output([]byte{byte(total)})
	out.Output(payload)
	crc := CRC16(out.Result())
	out.Output([]byte{byte(crc >> 8), byte(crc)})
	out.Output([]byte{frameSync})
	return out.Result()
}

// DecodeFrame extracts and verifies a single frame from the front of data,
// returning the payload and the number of bytes consumed. It does not
// resynchronize on garbage; callers that read from a live serial stream
// should scan for frameSync before calling DecodeFrame, mirroring
// Transport.Receive's resync loop.
func DecodeFrame(data []byte) (payload []byte, consumed int, err error) {
	if len(data) < frameMin {
		return nil, 0, ErrFrameTooShort
	}
	total := int(data[0])
	if total < frameMin || len(data) < total {
		return nil, 0, ErrFrameTooShort
	}
	if data[total-1] != frameSync {
		return nil, 0, ErrFrameSync
	}
	frameCRCVal := uint16(data[total-3])<<8 | uint16(data[total-2])
	if CRC16(data[:total-3]) != frameCRCVal {
		return nil, 0, ErrFrameCRC
	}
	return data[frameHeader : total-frameCRC-frameTail], total, nil
}
