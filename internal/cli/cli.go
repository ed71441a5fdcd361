// Package cli implements zpersona's command-line subcommands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"syscall"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zpersona/internal/export"
	"github.com/zarlcorp/zpersona/internal/identity"
	"github.com/zarlcorp/zpersona/internal/inbox"
	"github.com/zarlcorp/zpersona/internal/mailtm"
	"golang.org/x/term"
)

// DataDir returns the default data directory for zpersona.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d + "/zpersona"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zpersona"
	}
	return home + "/.local/share/zpersona"
}

// ReadPassword prompts for a password on w and reads it without echo.
func ReadPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// ReadNewPassword prompts for a new password with confirmation.
func ReadNewPassword(w io.Writer) (string, error) {
	pass, err := ReadPassword("master password: ", w)
	if err != nil {
		return "", err
	}
	confirm, err := ReadPassword("confirm password: ", w)
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return pass, nil
}

// IsFirstRun checks whether the saved-identity store has been initialized.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(dir + "/salt")
	return err != nil
}

// OpenStore prompts for a password and opens the encrypted store,
// returning both the store and its identities collection.
func OpenStore(dir string) (*zstore.Store, *zstore.Collection[identity.Record], error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	var pass string
	var err error
	if IsFirstRun(dir) {
		pass, err = ReadNewPassword(os.Stderr)
	} else {
		pass, err = ReadPassword("master password: ", os.Stderr)
	}
	if err != nil {
		return nil, nil, err
	}

	fsys := zfilesystem.NewOSFileSystem(dir)
	s, err := zstore.Open(fsys, []byte(pass))
	if err != nil {
		return nil, nil, err
	}

	col, err := zstore.NewCollection[identity.Record](s, "identities")
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	return s, col, nil
}

// generateOptions holds the parsed flags of the generate subcommand.
type generateOptions struct {
	Count     int
	Config    identity.Config
	Save      bool
	Format    string
	Encrypt   string
	NoPreview bool
	Keep      bool
}

func parseGenerateArgs(args []string) (generateOptions, error) {
	var opts generateOptions
	var fields string

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.IntVar(&opts.Count, "count", 1, "number of records to generate")
	fs.StringVar(&opts.Config.Country, "country", "US", "locale code")
	fs.StringVar(&opts.Config.Gender, "gender", identity.GenderAny, "male, female, neutral or any")
	fs.StringVar(&fields, "fields", "", "comma-separated field subset")
	fs.IntVar(&opts.Config.MinAge, "min-age", 18, "minimum age")
	fs.IntVar(&opts.Config.MaxAge, "max-age", 65, "maximum age")
	fs.BoolVar(&opts.Config.TempEmail, "use-temp-email", false, "provision a disposable mailbox per record")
	fs.StringVar(&opts.Config.ManualEmail, "manual-email", "", "use this email instead of generating one")
	fs.BoolVar(&opts.Save, "save", false, "export generated records to a file")
	fs.StringVar(&opts.Format, "format", export.FormatJSON, "export format: json, csv or yaml")
	fs.StringVar(&opts.Encrypt, "encrypt", "", "encrypt the export with this password")
	fs.BoolVar(&opts.NoPreview, "no-preview", false, "do not print records to stdout")
	fs.BoolVar(&opts.Keep, "keep", false, "store records in the encrypted identity store")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Config.Fields = splitFields(fields)

	if opts.Count < 1 {
		return opts, &identity.ConfigError{
			Param: "count", Value: fmt.Sprint(opts.Count), Reason: "must be at least 1",
		}
	}
	return opts, nil
}

// splitFields turns "a, b,c" into {"a","b","c"}; empty input means no
// subset was requested.
func splitFields(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CmdGenerate generates a batch of records. A configuration error
// aborts the whole batch before anything is produced; a failed mailbox
// provisioning skips that record and the batch continues.
func CmdGenerate(ctx context.Context, args []string) {
	opts, err := parseGenerateArgs(args)
	if err != nil {
		fatal(err)
	}

	var prov identity.Provisioner
	if opts.Config.TempEmail {
		prov = mailtm.NewClient()
	}
	comp := identity.New(prov)

	var records []identity.Record
	for i := 1; i <= opts.Count; i++ {
		rec, err := comp.Compose(ctx, opts.Config)
		if err != nil {
			var provErr *identity.ProvisioningError
			if errors.As(err, &provErr) {
				fmt.Fprintf(os.Stderr, "zpersona: record %d/%d skipped: %v\n", i, opts.Count, err)
				continue
			}
			fatal(err)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		fatal(fmt.Errorf("no records generated"))
	}

	if !opts.NoPreview {
		for i, rec := range records {
			if i > 0 {
				fmt.Println()
			}
			printRecord(rec)
		}
	}

	if opts.Save {
		dir := DataDir()
		if err := os.MkdirAll(dir, 0o700); err != nil {
			fatal(fmt.Errorf("create data dir: %w", err))
		}
		w := export.NewWriter(zfilesystem.NewOSFileSystem(dir))
		path, err := w.Save(records, opts.Format, opts.Encrypt)
		if err != nil {
			fatal(err)
		}
		fmt.Fprintf(os.Stderr, "exported %s/%s\n", dir, path)
	}

	if opts.Keep {
		keepRecords(records)
	}
}

// keepRecords stores records into the encrypted store, keyed by
// username. A record whose field subset dropped the username cannot be
// keyed and is skipped with a warning.
func keepRecords(records []identity.Record) {
	s, col, err := OpenStore(DataDir())
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	kept := 0
	for _, rec := range records {
		if rec.Username == "" {
			fmt.Fprintln(os.Stderr, "zpersona: skipping record without username (add username to --fields to keep it)")
			continue
		}
		if err := col.Put(rec.Username, rec); err != nil {
			fatal(fmt.Errorf("keep %s: %w", rec.Username, err))
		}
		kept++
	}
	fmt.Fprintf(os.Stderr, "kept %d record(s)\n", kept)
}

// CmdCheckInbox polls a provisioned mailbox for a verification code or
// confirmation link. Exhausting the attempt budget without a match is
// a normal outcome, reported on stdout with exit status 0.
func CmdCheckInbox(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("check-inbox", flag.ContinueOnError)
	codePat := fs.String("code-pattern", inbox.DefaultCodePattern, "regexp for verification codes")
	linkPat := fs.String("link-pattern", inbox.DefaultLinkPattern, "regexp for confirmation links")
	attempts := fs.Int("poll-attempts", inbox.DefaultAttempts, "number of polling attempts")
	interval := fs.Duration("poll-interval", inbox.DefaultInterval, "delay between attempts")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}

	if fs.NArg() != 1 {
		fatal(fmt.Errorf("usage: zpersona check-inbox <token> [flags]"))
	}
	token := fs.Arg(0)

	codeRe, err := regexp.Compile(*codePat)
	if err != nil {
		fatal(&identity.ConfigError{Param: "code-pattern", Value: *codePat, Reason: err.Error()})
	}
	linkRe, err := regexp.Compile(*linkPat)
	if err != nil {
		fatal(&identity.ConfigError{Param: "link-pattern", Value: *linkPat, Reason: err.Error()})
	}

	p := inbox.New(tokenMailbox{client: mailtm.NewClient(), token: token})
	result := p.Poll(ctx, inbox.Query{
		Code:        codeRe,
		Link:        linkRe,
		MaxAttempts: *attempts,
		Interval:    *interval,
	})

	if result.Matched {
		fmt.Printf("%s: %s\n", result.Kind, result.Value)
		return
	}
	if result.LastErr != nil {
		fmt.Fprintf(os.Stderr, "zpersona: last attempt failed: %v\n", result.LastErr)
	}
	fmt.Printf("no code or link after %d attempt(s)\n", result.Attempts)
}

// tokenMailbox binds a mail.tm client to one account token.
type tokenMailbox struct {
	client *mailtm.Client
	token  string
}

func (m tokenMailbox) Messages(ctx context.Context) ([]mailtm.Message, error) {
	return m.client.Messages(ctx, m.token)
}

// CmdList lists all kept identities, newest first.
func CmdList(args []string) {
	asJSON := hasFlag(args, "--json")

	s, col, err := OpenStore(DataDir())
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	records, err := col.List()
	if err != nil {
		fatal(fmt.Errorf("list: %w", err))
	}

	// Created is formatted so string order is time order
	sort.Slice(records, func(i, j int) bool {
		return records[i].Created > records[j].Created
	})

	if len(records) == 0 {
		fmt.Println("no kept identities")
		return
	}

	if asJSON {
		printJSON(records)
		return
	}

	for _, rec := range records {
		fmt.Printf("  %-18s %-24s %-34s %s\n",
			rec.Username, rec.FullName, rec.Email, rec.Created)
	}
}

// CmdForget deletes a kept identity by username.
func CmdForget(username string) {
	s, col, err := OpenStore(DataDir())
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	if err := col.Delete(username); err != nil {
		fatal(fmt.Errorf("forget %s: %w", username, err))
	}
	fmt.Printf("forgot %s\n", username)
}

// printRecord prints a human-readable preview, skipping fields the
// requested subset left empty.
func printRecord(rec identity.Record) {
	line := func(label, v string) {
		if v != "" {
			fmt.Printf("  %-12s %s\n", label+":", v)
		}
	}

	line("name", rec.FullName)
	if rec.FullName == "" {
		line("first name", rec.FirstName)
		line("last name", rec.LastName)
	}
	line("email", rec.Email)
	line("phone", rec.Phone)
	if a := rec.Address; a != nil {
		parts := []string{}
		for _, p := range []string{a.Street, a.City, a.State, a.Country} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		line("address", strings.Join(parts, ", "))
	}
	line("username", rec.Username)
	line("birthdate", rec.Birthdate)
	line("password", rec.Password)
	line("created", rec.Created)
	if rec.EmailToken != "" {
		line("token", rec.EmailToken)
		fmt.Println("  (poll this mailbox with: zpersona check-inbox <token>)")
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(fmt.Errorf("encode json: %w", err))
	}
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "zpersona: %v\n", err)
	os.Exit(1)
}
