package custodia

import (
	"encoding/json"
	"time"

	"github.com/custodia-one/custodia/errors"
)

// UnixNano represents a point in time as nanoseconds since the UNIX epoch.
// The host ledger reports block time with nanosecond precision, so unlike
// the usual seconds-precision timestamp this type keeps the full value in a
// primitive int64.
type UnixNano int64

// Time returns a time.Time structure that represents the same moment in time.
func (t UnixNano) Time() time.Time {
	return time.Unix(0, int64(t))
}

// IsZero returns true if this time represents a zero value.
func (t UnixNano) IsZero() bool {
	return t == 0
}

// Add modifies this timestamp by given duration. This is compatible with
// time.Time.Add method.
func (t UnixNano) Add(d time.Duration) UnixNano {
	return t + UnixNano(d)
}

// AsUnixNano converts given Time structure into its nanosecond representation.
func AsUnixNano(t time.Time) UnixNano {
	return UnixNano(t.UnixNano())
}

// AsSeconds converts a caller supplied duration expressed in seconds into a
// time.Duration. All durations cross the operation surface in seconds and
// are stored in nanoseconds.
func AsSeconds(seconds uint64) time.Duration {
	return time.Duration(seconds) * time.Second
}

// UnmarshalJSON supports unmarshaling both as time.Time and from a number.
// Usually a number is used as a representation of this time in JSON but it is
// convenient to use a string format in configurations (ie genesis file).
func (t *UnixNano) UnmarshalJSON(raw []byte) error {
	var ns int64
	if err := json.Unmarshal(raw, &ns); err == nil {
		if ns < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixNano(ns)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		ns := UnixNano(stdtime.UnixNano())
		if ns < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = ns
		return nil
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

// Validate returns an error if this time value is invalid.
func (t UnixNano) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

// String returns the usual string representation of this time as the
// time.Time structure would.
func (t UnixNano) String() string {
	return t.Time().UTC().String()
}
