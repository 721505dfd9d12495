// Package money handles naira amounts. Amounts travel as strings like "₦15,000"
// and are kept as whole-naira integers everywhere else.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const Symbol = "₦"

// Naira is a whole-naira amount.
type Naira int64

var stripper = strings.NewReplacer(Symbol, "", ",", "")

// Parse strips the currency symbol and thousands separators and reads the
// remaining digits as an integer.
func Parse(s string) (Naira, error) {
	clean := strings.TrimSpace(stripper.Replace(s))
	if clean == "" {
		return 0, fmt.Errorf("money: empty amount %q", s)
	}
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return Naira(n), nil
}

// MustParse is Parse for fixtures and tests.
func MustParse(s string) Naira {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

func Format(n Naira) string {
	return Symbol + humanize.Comma(int64(n))
}

func (n Naira) String() string { return Format(n) }

func (n Naira) MarshalJSON() ([]byte, error) {
	return json.Marshal(Format(n))
}

// UnmarshalJSON accepts "₦15,000", "15000" or a bare number.
func (n *Naira) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var v int64
		if err := json.Unmarshal(b, &v); err != nil {
			return fmt.Errorf("money: amount must be a string or integer: %s", string(b))
		}
		*n = Naira(v)
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*n = v
	return nil
}

func (n Naira) MarshalYAML() (any, error) { return Format(n), nil }

func (n *Naira) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// Value stores the amount as an integer column.
func (n Naira) Value() (driver.Value, error) { return int64(n), nil }

func (n *Naira) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*n = Naira(v)
	case float64:
		*n = Naira(v)
	case []byte:
		return n.scanString(string(v))
	case string:
		return n.scanString(v)
	case nil:
		*n = 0
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	return nil
}

func (n *Naira) scanString(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*n = v
	return nil
}
