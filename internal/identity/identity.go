// Package identity composes disposable personal records for testing.
// All sampling uses crypto/rand — no math/rand, no side effects.
package identity

// Address is the composite location part of a record.
type Address struct {
	Street  string `json:"street,omitempty" yaml:"street,omitempty"`
	City    string `json:"city,omitempty" yaml:"city,omitempty"`
	State   string `json:"state,omitempty" yaml:"state,omitempty"`
	Country string `json:"country,omitempty" yaml:"country,omitempty"`
}

// Record holds one generated identity. A record is write-once: fields
// are filled during composition and never mutated afterwards. Fields
// outside the requested subset stay zero and are omitted from
// serialized output.
type Record struct {
	FirstName  string   `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName   string   `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	FullName   string   `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	Email      string   `json:"email,omitempty" yaml:"email,omitempty"`
	EmailToken string   `json:"email_token,omitempty" yaml:"email_token,omitempty"`
	Phone      string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address    *Address `json:"address,omitempty" yaml:"address,omitempty"`
	Username   string   `json:"username,omitempty" yaml:"username,omitempty"`
	Birthdate  string   `json:"birthdate,omitempty" yaml:"birthdate,omitempty"`
	Password   string   `json:"password,omitempty" yaml:"password,omitempty"`
	Created    string   `json:"created,omitempty" yaml:"created,omitempty"`
}

// Canonical field names accepted in a requested field subset. The
// address_* selectors pick a single component of the composite address.
const (
	FieldFirstName      = "first_name"
	FieldLastName       = "last_name"
	FieldFullName       = "full_name"
	FieldEmail          = "email"
	FieldEmailToken     = "email_token"
	FieldPhone          = "phone"
	FieldAddress        = "address"
	FieldUsername       = "username"
	FieldBirthdate      = "birthdate"
	FieldPassword       = "password"
	FieldCreated        = "created"
	FieldAddressStreet  = "address_street"
	FieldAddressCity    = "address_city"
	FieldAddressState   = "address_state"
	FieldAddressCountry = "address_country"
)

// Fields lists every valid field name.
var Fields = []string{
	FieldFirstName, FieldLastName, FieldFullName, FieldEmail,
	FieldEmailToken, FieldPhone, FieldAddress, FieldUsername,
	FieldBirthdate, FieldPassword, FieldCreated,
	FieldAddressStreet, FieldAddressCity, FieldAddressState,
	FieldAddressCountry,
}

// KnownField reports whether name is a valid field selector.
func KnownField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Subset returns a copy of r containing only the requested fields.
// Requesting a field the record does not carry (email_token on a
// record without a provisioned mailbox) simply leaves it absent.
func (r Record) Subset(fields []string) Record {
	var out Record
	var addr Address
	hasAddr := false

	for _, f := range fields {
		switch f {
		case FieldFirstName:
			out.FirstName = r.FirstName
		case FieldLastName:
			out.LastName = r.LastName
		case FieldFullName:
			out.FullName = r.FullName
		case FieldEmail:
			out.Email = r.Email
		case FieldEmailToken:
			out.EmailToken = r.EmailToken
		case FieldPhone:
			out.Phone = r.Phone
		case FieldUsername:
			out.Username = r.Username
		case FieldBirthdate:
			out.Birthdate = r.Birthdate
		case FieldPassword:
			out.Password = r.Password
		case FieldCreated:
			out.Created = r.Created
		case FieldAddress:
			if r.Address != nil {
				addr = *r.Address
				hasAddr = true
			}
		case FieldAddressStreet:
			if r.Address != nil {
				addr.Street = r.Address.Street
				hasAddr = true
			}
		case FieldAddressCity:
			if r.Address != nil {
				addr.City = r.Address.City
				hasAddr = true
			}
		case FieldAddressState:
			if r.Address != nil {
				addr.State = r.Address.State
				hasAddr = true
			}
		case FieldAddressCountry:
			if r.Address != nil {
				addr.Country = r.Address.Country
				hasAddr = true
			}
		}
	}

	if hasAddr {
		out.Address = &addr
	}

	return out
}
