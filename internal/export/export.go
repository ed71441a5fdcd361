// Package export writes generated records to timestamped files in
// JSON, CSV or YAML form, optionally encrypted with a password.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zpersona/internal/identity"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// Formats lists the supported formats in display order.
var Formats = []string{FormatJSON, FormatCSV, FormatYAML}

// KnownFormat reports whether f names a supported format.
func KnownFormat(f string) bool {
	return f == FormatJSON || f == FormatCSV || f == FormatYAML
}

// StorageError wraps a filesystem failure while writing an export.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string { return fmt.Sprintf("export %s: %v", e.Path, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

const exportDir = "exports"

// Writer saves record batches onto a filesystem, one timestamped file
// per call under exports/.
type Writer struct {
	fs  zfilesystem.ReadWriteFileFS
	now func() time.Time
}

// NewWriter creates a writer over the given filesystem.
func NewWriter(fsys zfilesystem.ReadWriteFileFS) *Writer {
	return &Writer{fs: fsys, now: time.Now}
}

// Save encodes records in the given format and writes them to a new
// file named identities_YYYYMMDD_HHMMSS.<format>. A non-empty password
// encrypts the JSON or YAML payload and appends ".enc" to the name;
// CSV cannot be encrypted. Save returns the path written.
func (w *Writer) Save(records []identity.Record, format, password string) (string, error) {
	if !KnownFormat(format) {
		return "", &identity.ConfigError{Param: "format", Value: format, Reason: "must be json, csv or yaml"}
	}
	if password != "" && format == FormatCSV {
		return "", &identity.ConfigError{Param: "format", Value: format, Reason: "encryption is not supported for csv"}
	}

	data, err := encode(records, format)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("identities_%s.%s", w.now().Format("20060102_150405"), format)
	if password != "" {
		data, err = Encrypt(password, data)
		if err != nil {
			return "", err
		}
		name += ".enc"
	}

	if err := w.fs.MkdirAll(exportDir, 0o700); err != nil {
		return "", &StorageError{Path: exportDir, Err: err}
	}

	path := exportDir + "/" + name
	if err := w.fs.WriteFile(path, data, 0o600); err != nil {
		return "", &StorageError{Path: path, Err: err}
	}

	return path, nil
}

func encode(records []identity.Record, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil

	case FormatYAML:
		data, err := yaml.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return data, nil

	default:
		return encodeCSV(records)
	}
}

// csvColumns is the canonical column order; nested address fields are
// flattened to address_<component>.
var csvColumns = []string{
	"first_name", "last_name", "full_name",
	"email", "email_token", "phone",
	"address_street", "address_city", "address_state", "address_country",
	"username", "birthdate", "password", "created",
}

// encodeCSV writes one row per record. The header holds only the
// columns at least one record fills, so partial-field batches produce
// tidy files.
func encodeCSV(records []identity.Record) ([]byte, error) {
	rows := make([]map[string]string, len(records))
	present := make(map[string]bool)
	for i, r := range records {
		rows[i] = flatten(r)
		for col := range rows[i] {
			present[col] = true
		}
	}

	var header []string
	for _, col := range csvColumns {
		if present[col] {
			header = append(header, col)
		}
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	for _, row := range rows {
		line := make([]string, len(header))
		for i, col := range header {
			line[i] = row[col]
		}
		if err := cw.Write(line); err != nil {
			return nil, fmt.Errorf("encode csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}

	return buf.Bytes(), nil
}

func flatten(r identity.Record) map[string]string {
	row := make(map[string]string)
	put := func(col, v string) {
		if v != "" {
			row[col] = v
		}
	}

	put("first_name", r.FirstName)
	put("last_name", r.LastName)
	put("full_name", r.FullName)
	put("email", r.Email)
	put("email_token", r.EmailToken)
	put("phone", r.Phone)
	if r.Address != nil {
		put("address_street", r.Address.Street)
		put("address_city", r.Address.City)
		put("address_state", r.Address.State)
		put("address_country", r.Address.Country)
	}
	put("username", r.Username)
	put("birthdate", r.Birthdate)
	put("password", r.Password)
	put("created", r.Created)

	return row
}
