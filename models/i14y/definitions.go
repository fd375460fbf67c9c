package i14y

import (
	"encoding/json"
	"fmt"
	"regexp"
)

type pattern string

func (p pattern) String() string {
	return string(p)
}

const (
	oidPattern  pattern = "^[0-2](\\.(0|[1-9][0-9]*))*$"
	datePattern pattern = "^\\d{4}-\\d{2}-\\d{2}$"
)

var (
	oidRegex  = regexp.MustCompile(oidPattern.String())
	dateRegex = regexp.MustCompile(datePattern.String())
)

// OID is a dotted object identifier as carried by ART-DECOR value sets.
type OID string

func (o OID) String() string {
	return string(o)
}

func (o *OID) UnmarshalText(text []byte) error {
	if !oidRegex.Match(text) {
		return fmt.Errorf("invalid OID %q", text)
	}
	*o = OID(text)
	return nil
}

func (o OID) MarshalText() ([]byte, error) {
	if !oidRegex.MatchString(o.String()) {
		return nil, fmt.Errorf("invalid OID %q", o)
	}
	return []byte(o), nil
}

func (o *OID) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !oidRegex.MatchString(v) {
		return fmt.Errorf("invalid OID %q", v)
	}
	*o = OID(v)
	return nil
}

func (o OID) MarshalJSON() ([]byte, error) {
	if !oidRegex.MatchString(o.String()) {
		return nil, fmt.Errorf("invalid OID %q", o)
	}
	return json.Marshal(o.String())
}

// Date is a calendar date in YYYY-MM-DD form, the format I14Y expects
// for validFrom and period boundaries.
type Date string

func (d Date) String() string {
	return string(d)
}

func (d *Date) UnmarshalText(text []byte) error {
	if !dateRegex.Match(text) {
		return fmt.Errorf("invalid date %q", text)
	}
	*d = Date(text)
	return nil
}

func (d Date) MarshalText() ([]byte, error) {
	if !dateRegex.MatchString(d.String()) {
		return nil, fmt.Errorf("invalid date %q", d)
	}
	return []byte(d), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !dateRegex.MatchString(v) {
		return fmt.Errorf("invalid date %q", v)
	}
	*d = Date(v)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !dateRegex.MatchString(d.String()) {
		return nil, fmt.Errorf("invalid date %q", d)
	}
	return json.Marshal(d.String())
}
