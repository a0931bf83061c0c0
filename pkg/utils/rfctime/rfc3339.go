// Package rfctime carries timestamps of API payloads.
package rfctime

import (
	"bytes"
	"encoding/json"
	"time"
)

// layout of timestamps in responses. Offset is always numeric, never "Z".
const RFC3339DateTimeFormat string = "2006-01-02T15:04:05.999-07:00"

// layout accepted when parsing. "Z" is allowed.
const RFC3339DateTimeFormatZ string = time.RFC3339Nano

// RFC3339 is a time.Time which is written as RFC3339 date-time in JSON.
type RFC3339 time.Time

func (t RFC3339) Time() time.Time {
	return time.Time(t)
}

func (t *RFC3339) Equal(o *RFC3339) bool {
	if t == nil || o == nil {
		return t == nil && o == nil
	}
	return t.Time().Equal(o.Time())
}

func (t RFC3339) String() string {
	return time.Time(t).Format(RFC3339DateTimeFormat)
}

func ParseRFC3339DateTime(s string) (RFC3339, error) {
	t, err := time.Parse(RFC3339DateTimeFormatZ, s)
	if err != nil {
		return RFC3339{}, err
	}
	return RFC3339(t), nil
}

func (t RFC3339) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts a RFC3339 string. null leaves t as it is.
func (t *RFC3339) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	ret, err := ParseRFC3339DateTime(s)
	if err != nil {
		return err
	}
	*t = ret
	return nil
}
