package grader

import "github.com/verte-zerg/chantest/internal/model"

// Verdict decides whether the run passed and why it failed if it did not.
func (a *Aggregator) Verdict() (bool, model.FailReason) {
	passed := a.speed >= a.cfg.MinSpeed && a.successRate >= a.cfg.MinSuccessRate
	if !passed {
		if a.speed < a.cfg.MinSpeed {
			return false, model.FailReasonEncodeSpeedLow
		}
		return false, model.FailReasonDecodeFailureRateHigh
	}

	for key := range a.failed {
		if tooManyErrors(a.records[key].SourceText, a.decoded[key], a.cfg.MaxByteErrors) {
			return false, model.FailReasonDecodeFailureManyErrors
		}
	}
	return true, model.FailReasonNone
}

// tooManyErrors counts differing bytes over the length of source. Positions past
// the end of decoded compare against NUL.
func tooManyErrors(source, decoded string, limit int) bool {
	n := 0
	for i := 0; i < len(source); i++ {
		if source[i] != byteAt(decoded, i) {
			n++
			if n > limit {
				return true
			}
		}
	}
	return false
}

func byteAt(s string, i int) byte {
	if i < len(s) {
		return s[i]
	}
	return 0
}
