package identity

import (
	"fmt"
	"strings"
)

// ConfigError reports an invalid user-supplied generation parameter.
type ConfigError struct {
	Param  string // which parameter: "gender", "fields", "age range"
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}

// UnsupportedLocaleError reports a country code with no locale tables.
// An unknown locale is a hard error, never a silent fallback: falling
// back would generate wrong-country data without telling the caller.
type UnsupportedLocaleError struct {
	Country string
}

func (e *UnsupportedLocaleError) Error() string {
	return fmt.Sprintf("unsupported country %q (supported: %s)",
		e.Country, strings.Join(LocaleCodes(), ", "))
}

// ProvisioningError reports a failed temporary-mailbox creation. The
// record it was meant for is aborted; other records in a batch are not.
type ProvisioningError struct {
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision mailbox: %v", e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }
