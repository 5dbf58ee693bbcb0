package config

import "encoding/json"

// SensitiveString is a string type for credential values (API keys, tokens).
// It renders as "[REDACTED]" through String, JSON and YAML marshaling so
// secrets never leak into logs or diagnostic output. The raw value is only
// reachable through Value().
type SensitiveString string

// String returns a redacted representation of the value.
func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// Value returns the actual secret value.
func (s SensitiveString) Value() string {
	return string(s)
}

// MarshalJSON marshals the redacted representation.
func (s SensitiveString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a plain string value.
func (s *SensitiveString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = SensitiveString(v)
	return nil
}

// MarshalYAML marshals the redacted representation.
func (s SensitiveString) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML accepts a plain string value.
func (s *SensitiveString) UnmarshalYAML(unmarshal func(any) error) error {
	var v string
	if err := unmarshal(&v); err != nil {
		return err
	}
	*s = SensitiveString(v)
	return nil
}
