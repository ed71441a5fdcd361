package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Gender values accepted in a Config.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderNeutral = "neutral"
	GenderAny     = "any"
)

// password character classes
const (
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars   = "0123456789"
	symbolChars  = "!@#$%^&*()-_=+[]{}|;:,.<>?"
	allPassChars = lowerChars + upperChars + digitChars + symbolChars

	passwordLen = 16
)

// Config describes one record to compose. The zero value is not
// usable; callers fill at least Country. An empty Gender means "any".
type Config struct {
	Country     string   // locale code, case-insensitive
	Gender      string   // male, female, neutral, any
	Fields      []string // requested subset; empty means all
	MinAge      int
	MaxAge      int
	TempEmail   bool   // provision a disposable mailbox
	ManualEmail string // caller-supplied address, overrides synthesis
}

// Provisioner creates disposable mailboxes for generated records.
type Provisioner interface {
	CreateAccount(ctx context.Context) (address, token string, err error)
}

// Composer builds identity records from locale tables and a secure
// random source. Safe for sequential reuse; each Compose call is
// independent.
type Composer struct {
	provisioner Provisioner
	now         func() time.Time
}

// New creates a composer. provisioner may be nil when temp-email
// generation will never be requested.
func New(provisioner Provisioner) *Composer {
	return &Composer{
		provisioner: provisioner,
		now:         time.Now,
	}
}

// Compose generates one record per cfg. Validation failures return
// *ConfigError or *UnsupportedLocaleError; a failed mailbox creation
// returns *ProvisioningError. Nothing is partially returned on error.
func (c *Composer) Compose(ctx context.Context, cfg Config) (Record, error) {
	if err := validate(cfg); err != nil {
		return Record{}, err
	}

	loc, ok := lookupLocale(cfg.Country)
	if !ok {
		return Record{}, &UnsupportedLocaleError{Country: cfg.Country}
	}

	gender := strings.ToLower(cfg.Gender)
	if gender == "" || gender == GenderAny {
		gender = pick([]string{GenderMale, GenderFemale, GenderNeutral})
	}

	first := pick(loc.firstNames(gender))
	last := pick(loc.lastNames)
	now := c.now()

	rec := Record{
		FirstName: first,
		LastName:  last,
		FullName:  first + " " + last,
		Email:     synthEmail(first, last),
		Phone:     phone(loc.phoneFormat),
		Address:   address(loc),
		Username:  username(first, last),
		Birthdate: birthdate(now, cfg.MinAge, cfg.MaxAge),
		Password:  Password(passwordLen),
		Created:   now.Format("2006-01-02 15:04:05"),
	}

	switch {
	case cfg.ManualEmail != "":
		rec.Email = cfg.ManualEmail
	case cfg.TempEmail:
		if c.provisioner == nil {
			return Record{}, &ProvisioningError{Err: errors.New("no mailbox provider configured")}
		}
		addr, token, err := c.provisioner.CreateAccount(ctx)
		if err != nil {
			return Record{}, &ProvisioningError{Err: err}
		}
		rec.Email = addr
		rec.EmailToken = token
	}

	if len(cfg.Fields) > 0 {
		rec = rec.Subset(cfg.Fields)
	}

	return rec, nil
}

func validate(cfg Config) error {
	if cfg.MinAge < 0 || cfg.MaxAge > 120 || cfg.MinAge > cfg.MaxAge {
		return &ConfigError{
			Param:  "age range",
			Value:  fmt.Sprintf("%d..%d", cfg.MinAge, cfg.MaxAge),
			Reason: "need 0 <= min <= max <= 120",
		}
	}

	switch strings.ToLower(cfg.Gender) {
	case "", GenderMale, GenderFemale, GenderNeutral, GenderAny:
	default:
		return &ConfigError{
			Param:  "gender",
			Value:  cfg.Gender,
			Reason: "must be male, female, neutral or any",
		}
	}

	for _, f := range cfg.Fields {
		if !KnownField(f) {
			return &ConfigError{
				Param:  "fields",
				Value:  f,
				Reason: "valid fields: " + strings.Join(Fields, ", "),
			}
		}
	}

	if cfg.TempEmail && cfg.ManualEmail != "" {
		return &ConfigError{
			Param:  "email",
			Value:  cfg.ManualEmail,
			Reason: "temp-email and manual email are mutually exclusive",
		}
	}

	return nil
}

func (l *locale) firstNames(gender string) []string {
	switch gender {
	case GenderMale:
		return l.male
	case GenderFemale:
		return l.female
	default:
		return l.neutral
	}
}

// synthEmail builds first.last<digits>@domain from a reserved domain.
func synthEmail(first, last string) string {
	domain := pick(emailDomains)
	return fmt.Sprintf("%s.%s%d@%s",
		strings.ToLower(first), strings.ToLower(last), randIntn(1000), domain)
}

// username appends a 4-char hex suffix for best-effort uniqueness.
// Collisions across a batch are possible but harmless for test data.
func username(first, last string) string {
	return strings.ToLower(first) + strings.ToLower(last) + hexSuffix(2)
}

// phone expands a locale template, replacing '#' with random digits.
func phone(format string) string {
	var b strings.Builder
	for _, r := range format {
		if r == '#' {
			b.WriteByte(digitChars[randIntn(10)])
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func address(loc *locale) *Address {
	state := pick(loc.states)
	return &Address{
		Street:  fmt.Sprintf("%d %s", 1+randIntn(999), pick(loc.streets)),
		City:    pick(loc.cities[state]),
		State:   state,
		Country: loc.code,
	}
}

// birthdate draws a uniformly random day such that the age at now is
// within [minAge, maxAge] inclusive: the latest valid birthday is
// exactly minAge years ago, the earliest is the day after turning
// maxAge+1 would be reached.
func birthdate(now time.Time, minAge, maxAge int) string {
	latest := now.AddDate(-minAge, 0, 0)
	earliest := now.AddDate(-(maxAge + 1), 0, 1)
	span := int(latest.Sub(earliest).Hours()/24) + 1
	day := earliest.AddDate(0, 0, randIntn(span))
	return day.Format("2006-01-02")
}

// Password generates a password of the given length containing at
// least one character from each class (lower, upper, digit, symbol).
func Password(length int) string {
	if length < 4 {
		length = 4
	}

	buf := make([]byte, length)

	// guarantee one from each class
	buf[0] = pickByte(lowerChars)
	buf[1] = pickByte(upperChars)
	buf[2] = pickByte(digitChars)
	buf[3] = pickByte(symbolChars)

	for i := 4; i < length; i++ {
		buf[i] = pickByte(allPassChars)
	}

	// shuffle using Fisher-Yates
	for i := length - 1; i > 0; i-- {
		j := randIntn(i + 1)
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf)
}

// hexSuffix generates a random hex string of n bytes (2n characters).
func hexSuffix(n int) string {
	b := make([]byte, n)
	mustRead(b)
	return hex.EncodeToString(b)
}

// pick returns a random element from a string slice.
func pick(s []string) string {
	return s[randIntn(len(s))]
}

// pickByte returns a random byte from a string.
func pickByte(s string) byte {
	return s[randIntn(len(s))]
}

// randIntn returns a cryptographically random int in [0, n).
func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failure is unrecoverable
		panic("crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

// mustRead fills b with cryptographically random bytes.
func mustRead(b []byte) {
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
}
