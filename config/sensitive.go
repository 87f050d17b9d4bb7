package config

import "encoding/json"

// SensitiveString holds a value that must never appear in logs, error
// details, or JSON output in the clear, such as a database password.
type SensitiveString string

const redacted = "[REDACTED]"

// String implements fmt.Stringer, redacting the value.
func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// Value returns the real, unredacted value.
func (s SensitiveString) Value() string {
	return string(s)
}

// MarshalJSON redacts the value unless it is empty.
func (s SensitiveString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the real value from JSON input.
func (s *SensitiveString) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SensitiveString(raw)
	return nil
}
