package model

import "fmt"

// FailReason classifies why a run did not pass.
type FailReason int

const (
	FailReasonNone FailReason = iota
	FailReasonEncodeSpeedLow
	FailReasonDecodeFailureRateHigh
	FailReasonDecodeFailureManyErrors
)

var failReasonNames = map[FailReason]string{
	FailReasonNone:                    "none",
	FailReasonEncodeSpeedLow:          "encode_speed_low",
	FailReasonDecodeFailureRateHigh:   "decode_failure_rate_high",
	FailReasonDecodeFailureManyErrors: "decode_failure_many_errors",
}

func (r FailReason) String() string {
	if name, ok := failReasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("fail_reason(%d)", int(r))
}

// ParseFailReason is the inverse of String.
func ParseFailReason(s string) (FailReason, error) {
	for reason, name := range failReasonNames {
		if name == s {
			return reason, nil
		}
	}
	return FailReasonNone, fmt.Errorf("unknown fail reason %q", s)
}

// MarshalYAML writes the reason by name.
func (r FailReason) MarshalYAML() (any, error) {
	return r.String(), nil
}

// Describe returns the explanation printed in the report when a run fails.
func (r Report) Describe() string {
	switch r.FailReason {
	case FailReasonEncodeSpeedLow:
		return fmt.Sprintf("Encoding speed of '%f' is too low. Consider using a different algorithm or fewer encoding characters per input character.", r.MeanEncodeSpeed)
	case FailReasonDecodeFailureRateHigh:
		return fmt.Sprintf("Decode failure rate of '%f' is too high. Check your algorithm for errors and make sure you are adapting to your noise level.", 1-r.MeanDecodeSuccessRate)
	case FailReasonDecodeFailureManyErrors:
		return "Decoding algorithm produced too many wrong bytes in a single test. Check your algorithm for errors and make sure you are adapting to your noise level."
	}
	return ""
}
