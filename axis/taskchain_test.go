package axis

import (
	"reflect"
	"testing"
)

func TestTaskChainExpandAndAdvance(t *testing.T) {
	var c taskChain
	c.expand(StateMotorCalibration, StateEncoderIndexSearch, StateClosedLoopControl)

	if c.empty() {
		t.Fatal("expected non-empty chain after expand")
	}
	if c.head() != StateMotorCalibration {
		t.Fatalf("expected head MOTOR_CALIBRATION, got %v", c.head())
	}

	c.advance()
	if c.head() != StateEncoderIndexSearch {
		t.Fatalf("expected head ENCODER_INDEX_SEARCH after advance, got %v", c.head())
	}

	c.advance()
	if c.head() != StateClosedLoopControl {
		t.Fatalf("expected head CLOSED_LOOP_CONTROL after advance, got %v", c.head())
	}

	c.advance()
	if !c.empty() {
		t.Fatal("expected chain empty after consuming all states")
	}
}

func TestTaskChainFailDiscardsRemainder(t *testing.T) {
	var c taskChain
	c.expand(StateMotorCalibration, StateEncoderIndexSearch, StateClosedLoopControl)
	c.advance() // consume MOTOR_CALIBRATION

	c.fail()
	if c.len != 1 || c.head() != StateIdle {
		t.Fatalf("expected chain collapsed to a single IDLE entry, got len=%d head=%v", c.len, c.head())
	}
}

func TestTaskChainExpandTruncatesOversizedInput(t *testing.T) {
	var c taskChain
	big := make([]State, taskChainDepth+5)
	for i := range big {
		big[i] = StateIdle
	}
	c.expand(big...)
	if c.len != taskChainDepth {
		t.Fatalf("expected chain truncated to %d, got %d", taskChainDepth, c.len)
	}
}

func TestStartupSequenceAllFlagsOffCollapsesToIdle(t *testing.T) {
	got := startupSequence(startupFlags{}, true)
	want := []State{StateIdle}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStartupSequenceFiltersByFlagsAndUseIndex(t *testing.T) {
	flags := startupFlags{
		motorCalibration:         true,
		encoderIndexSearch:       true,
		encoderOffsetCalibration: true,
		closedLoopControl:        true,
	}
	got := startupSequence(flags, false) // useIndex false suppresses ENCODER_INDEX_SEARCH
	want := []State{StateMotorCalibration, StateEncoderOffsetCalibration, StateClosedLoopControl, StateIdle}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStartupSequenceClosedLoopWinsOverSensorless(t *testing.T) {
	flags := startupFlags{closedLoopControl: true, sensorlessControl: true}
	got := startupSequence(flags, false)
	want := []State{StateClosedLoopControl, StateIdle}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStartupSequenceFallsBackToSensorless(t *testing.T) {
	flags := startupFlags{sensorlessControl: true}
	got := startupSequence(flags, false)
	want := []State{StateSensorlessControl, StateIdle}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFullCalibrationSequenceWithIndex(t *testing.T) {
	got := fullCalibrationSequence(true)
	want := []State{StateMotorCalibration, StateEncoderIndexSearch, StateEncoderOffsetCalibration, StateIdle}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFullCalibrationSequenceWithoutIndex(t *testing.T) {
	got := fullCalibrationSequence(false)
	want := []State{StateMotorCalibration, StateEncoderOffsetCalibration, StateIdle}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
