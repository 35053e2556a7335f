package telemetry

import "testing"

func TestScratchOutput(t *testing.T) {
	scratch := NewScratchOutput()

	data1 := []byte{1, 2, 3}
	scratch.Output(data1)

	result := scratch.Result()
	if len(result) != 3 {
		t.Errorf("Expected 3 bytes in result, got %d", len(result))
	}

	data2 := []byte{4, 5}
	scratch.Output(data2)

	result = scratch.Result()
	if len(result) != 5 {
		t.Errorf("Expected 5 bytes in result, got %d", len(result))
	}
	if result[0] != 1 || result[4] != 5 {
		t.Errorf("Result mismatch: got %v", result)
	}

	scratch.Reset()
	if len(scratch.Result()) != 0 {
		t.Errorf("After reset, expected empty result, got %v", scratch.Result())
	}

	scratch.Output([]byte{9})
	if len(scratch.Result()) != 1 || scratch.Result()[0] != 9 {
		t.Errorf("After reset and reuse, expected [9], got %v", scratch.Result())
	}
}
