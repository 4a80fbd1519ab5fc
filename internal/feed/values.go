package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GBFS producers disagree on scalar encodings between versions. The types below
// accept every encoding seen in the wild and normalize it.

// flexBool accepts true/false, 0/1 and their quoted forms
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true", "1":
		*b = true
	case "false", "0":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

// flexInt accepts integers, floats with no fraction and numeric strings
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(strings.Trim(string(data), `"`), 64)
	if err != nil {
		return fmt.Errorf("invalid count %s: %w", data, err)
	}
	*n = flexInt(f)
	return nil
}

// flexFloat accepts numbers and numeric strings
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(strings.Trim(string(data), `"`), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*f = flexFloat(v)
	return nil
}

// flexString accepts strings and bare numbers, used for station ids
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if bytes.HasPrefix(data, []byte(`"`)) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid identifier %s: %w", data, err)
	}
	*s = flexString(n.String())
	return nil
}

// flexTime accepts POSIX seconds (GBFS 1.x/2.x) and RFC 3339 strings (GBFS 3.x).
// The result is always UTC.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		*t = flexTime(time.Unix(int64(secs), 0).UTC())
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	*t = flexTime(parsed.UTC())
	return nil
}

func (t *flexTime) timePtr() *time.Time {
	if t == nil {
		return nil
	}
	v := time.Time(*t)
	return &v
}

// localizedName accepts a plain string or a GBFS 3.x list of {text, language}
type localizedName string

func (n *localizedName) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(data, []byte(`"`)) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*n = localizedName(v)
		return nil
	}
	var texts []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &texts); err != nil {
		return nil
	}
	if len(texts) > 0 {
		*n = localizedName(texts[0].Text)
	}
	return nil
}
