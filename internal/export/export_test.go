package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zpersona/internal/identity"
	"gopkg.in/yaml.v3"
)

func testRecord() identity.Record {
	return identity.Record{
		FirstName: "Ada",
		LastName:  "Quinn",
		FullName:  "Ada Quinn",
		Email:     "ada.quinn42@example.org",
		Phone:     "+1-555-014-2323",
		Address: &identity.Address{
			Street:  "17 Birch Lane",
			City:    "Portland",
			State:   "OR",
			Country: "US",
		},
		Username:  "adaquinn3f2a",
		Birthdate: "1991-04-02",
		Password:  "s3cret-s3cret!AB",
		Created:   "2026-08-25 10:11:12",
	}
}

func newTestWriter() (*Writer, zfilesystem.ReadWriteFileFS) {
	fs := zfilesystem.NewMemFS()
	w := NewWriter(fs)
	w.now = func() time.Time { return time.Date(2026, 8, 25, 10, 11, 12, 0, time.UTC) }
	return w, fs
}

func TestSaveJSON(t *testing.T) {
	w, fs := newTestWriter()

	path, err := w.Save([]identity.Record{testRecord()}, FormatJSON, "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if path != "exports/identities_20260825_101112.json" {
		t.Errorf("path: got %q", path)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	var got []identity.Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || !reflect.DeepEqual(got[0], testRecord()) {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}

func TestSaveYAML(t *testing.T) {
	w, fs := newTestWriter()

	path, err := w.Save([]identity.Record{testRecord(), testRecord()}, FormatYAML, "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(path, ".yaml") {
		t.Errorf("path: got %q, want .yaml suffix", path)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	var got []identity.Record
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || !reflect.DeepEqual(got[0], testRecord()) {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}

func TestSaveCSVFlattensAddress(t *testing.T) {
	w, fs := newTestWriter()

	path, err := w.Save([]identity.Record{testRecord()}, FormatCSV, "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want header + 1", len(rows))
	}

	wantHeader := []string{
		"first_name", "last_name", "full_name", "email", "phone",
		"address_street", "address_city", "address_state", "address_country",
		"username", "birthdate", "password", "created",
	}
	if got := strings.Join(rows[0], ","); got != strings.Join(wantHeader, ",") {
		t.Errorf("header:\n got %q\nwant %q", got, strings.Join(wantHeader, ","))
	}

	cells := map[string]string{}
	for i, col := range rows[0] {
		cells[col] = rows[1][i]
	}
	if cells["address_city"] != "Portland" || cells["address_country"] != "US" {
		t.Errorf("address not flattened: %v", cells)
	}
	if cells["email"] != "ada.quinn42@example.org" {
		t.Errorf("email cell: got %q", cells["email"])
	}
}

func TestSaveCSVSubsetHeader(t *testing.T) {
	w, fs := newTestWriter()

	rec := identity.Record{FirstName: "Ada", Email: "ada@example.org"}
	path, err := w.Save([]identity.Record{rec}, FormatCSV, "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	data, _ := fs.ReadFile(path)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if got := strings.Join(rows[0], ","); got != "first_name,email" {
		t.Errorf("header: got %q, want only the filled columns", got)
	}
}

func TestSaveCSVUnionHeader(t *testing.T) {
	w, fs := newTestWriter()

	recs := []identity.Record{
		{FirstName: "Ada"},
		{Email: "n@example.org", Phone: "+1-555-000-0000"},
	}
	path, err := w.Save(recs, FormatCSV, "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	data, _ := fs.ReadFile(path)
	rows, _ := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if got := strings.Join(rows[0], ","); got != "first_name,email,phone" {
		t.Errorf("header: got %q, want canonical-order union", got)
	}
	// first record has no email; its cell is empty, not shifted
	if rows[1][1] != "" || rows[2][1] != "n@example.org" {
		t.Errorf("cells misaligned: %v / %v", rows[1], rows[2])
	}
}

func TestSaveEncrypted(t *testing.T) {
	w, fs := newTestWriter()

	path, err := w.Save([]identity.Record{testRecord()}, FormatJSON, "hunter2")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(path, ".json.enc") {
		t.Errorf("path: got %q, want .json.enc suffix", path)
	}

	ct, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if bytes.Contains(ct, []byte("Ada")) {
		t.Error("ciphertext leaks plaintext")
	}

	plain, err := Decrypt("hunter2", ct)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	var got []identity.Record
	if err := json.Unmarshal(plain, &got); err != nil {
		t.Fatalf("decode decrypted payload: %v", err)
	}
	if !reflect.DeepEqual(got[0], testRecord()) {
		t.Errorf("roundtrip mismatch: %+v", got[0])
	}

	if _, err := Decrypt("wrong", ct); err == nil {
		t.Error("wrong password must not decrypt")
	}
}

func TestSaveCSVRejectsPassword(t *testing.T) {
	w, _ := newTestWriter()

	_, err := w.Save([]identity.Record{testRecord()}, FormatCSV, "hunter2")

	var cfgErr *identity.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want *identity.ConfigError", err)
	}
}

func TestSaveUnknownFormat(t *testing.T) {
	w, _ := newTestWriter()

	_, err := w.Save([]identity.Record{testRecord()}, "xml", "")

	var cfgErr *identity.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want *identity.ConfigError", err)
	}
	if cfgErr.Param != "format" {
		t.Errorf("param: got %q, want format", cfgErr.Param)
	}
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	plain := []byte("not much of a secret")

	ct, err := Encrypt("pw", plain)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := Decrypt("pw", ct)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("roundtrip: got %q", got)
	}
}
