package axis

// taskChain is the bounded FIFO of pending states, mirroring axis.cpp's
// task_chain_ array: STARTUP_SEQUENCE and FULL_CALIBRATION_SEQUENCE expand
// into a list of constituent states here. On each successful task
// completion the chain shifts left, exposing the next state. On failure
// the entire remaining chain is discarded and overwritten with a single
// IDLE entry — a failed compound sequence never continues to its next step.
type taskChain struct {
	states [taskChainDepth]State
	len    int
}

// expand replaces the chain's contents with states, truncating (never
// panicking) if the caller supplies more than taskChainDepth entries —
// compound sequences in this repository never approach that bound.
func (c *taskChain) expand(states ...State) {
	c.len = copy(c.states[:], states)
}

// empty reports whether the chain has been fully consumed.
func (c *taskChain) empty() bool { return c.len == 0 }

// head returns the next pending state without consuming it.
func (c *taskChain) head() State {
	if c.len == 0 {
		return StateUndefined
	}
	return c.states[0]
}

// advance shifts the chain left by one on task success, matching
// axis.cpp's "move to the next task in the chain" step.
func (c *taskChain) advance() {
	if c.len == 0 {
		return
	}
	copy(c.states[:c.len-1], c.states[1:c.len])
	c.len--
}

// fail discards the remaining chain and replaces it with a single IDLE
// entry, matching axis.cpp's behavior when any task in a compound sequence
// reports failure: the sequence does not continue to its next step.
func (c *taskChain) fail() {
	c.states[0] = StateIdle
	c.len = 1
}

// startupFlags is the subset of axis configuration that gates which steps
// STARTUP_SEQUENCE expands to.
type startupFlags struct {
	motorCalibration         bool
	encoderIndexSearch       bool
	encoderOffsetCalibration bool
	closedLoopControl        bool
	sensorlessControl        bool
}

// startupSequence expands STARTUP_SEQUENCE into the ordered subset of
// {MOTOR_CALIBRATION, ENCODER_INDEX_SEARCH (iff useIndex), ENCODER_OFFSET_
// CALIBRATION, CLOSED_LOOP_CONTROL or SENSORLESS_CONTROL (closed-loop
// wins), IDLE} filtered by the corresponding startup_* flags. The trailing
// IDLE is unconditional: a chain with every flag false still ends the
// sequence cleanly at idle rather than an empty chain.
func startupSequence(flags startupFlags, useIndex bool) []State {
	out := make([]State, 0, 5)
	if flags.motorCalibration {
		out = append(out, StateMotorCalibration)
	}
	if useIndex && flags.encoderIndexSearch {
		out = append(out, StateEncoderIndexSearch)
	}
	if flags.encoderOffsetCalibration {
		out = append(out, StateEncoderOffsetCalibration)
	}
	if flags.closedLoopControl {
		out = append(out, StateClosedLoopControl)
	} else if flags.sensorlessControl {
		out = append(out, StateSensorlessControl)
	}
	out = append(out, StateIdle)
	return out
}

// fullCalibrationSequence expands FULL_CALIBRATION_SEQUENCE into
// {MOTOR_CALIBRATION, ENCODER_INDEX_SEARCH (iff useIndex), ENCODER_OFFSET_
// CALIBRATION, IDLE}. Unlike STARTUP_SEQUENCE this is not gated by the
// startup_* flags: requesting a full calibration always runs it in full.
func fullCalibrationSequence(useIndex bool) []State {
	out := make([]State, 0, 4)
	out = append(out, StateMotorCalibration)
	if useIndex {
		out = append(out, StateEncoderIndexSearch)
	}
	out = append(out, StateEncoderOffsetCalibration, StateIdle)
	return out
}
