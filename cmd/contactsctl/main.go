package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/model"
	"github.com/tartampluch/go-contacts/internal/store"
	"github.com/tartampluch/go-contacts/internal/validate"
)

// CLI is the top-level command structure for contactsctl.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Data    string           `help:"Path to the contacts file (default: user config directory)." type:"path"`
	Strict  bool             `help:"Report malformed lines instead of skipping them."`
	Debug   bool             `help:"Enable debug logging to stderr."`

	List        ListCmd        `cmd:"" help:"List contacts."`
	Add         AddCmd         `cmd:"" help:"Add a contact."`
	Edit        EditCmd        `cmd:"" help:"Change one field of a contact."`
	Delete      DeleteCmd      `cmd:"" help:"Delete a contact."`
	Import      ImportCmd      `cmd:"" help:"Import contacts from a vCard file or URL."`
	ExportVCard ExportVCardCmd `cmd:"" name:"export-vcard" help:"Export contacts as vCards."`
	ExportICS   ExportICSCmd   `cmd:"" name:"export-ics" help:"Export a birthday calendar."`
	Check       CheckCmd       `cmd:"" help:"Validate a single field value."`
}

// env is bound into every command's Run method.
type env struct {
	ctx  context.Context
	book *engine.Book
	out  io.Writer
	errw io.Writer
}

// ListCmd prints the address book.
type ListCmd struct {
	Output string `help:"Output format." short:"o" enum:"table,yaml" default:"table"`
}

// listedContact is the YAML shape of one row.
type listedContact struct {
	Row           int `yaml:"row"`
	model.Contact `yaml:",inline"`
}

// Run executes the list command.
func (c *ListCmd) Run(e *env) error {
	contacts := e.book.Snapshot()

	if c.Output == "yaml" {
		rows := make([]listedContact, len(contacts))
		for i, ct := range contacts {
			rows[i] = listedContact{Row: i + 1, Contact: ct}
		}
		enc := yaml.NewEncoder(e.out)
		defer func() { _ = enc.Close() }()
		return enc.Encode(rows)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Name", "Phone Number(s)", "Email", "Address", "Birthday").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for i, ct := range contacts {
		t.Row(strconv.Itoa(i+1), ct.Name, ct.PhoneNumbers, ct.Email, ct.Address, ct.Birthday)
	}

	_, err := fmt.Fprintln(e.out, t.Render())
	return err
}

// AddCmd appends a contact. Omitted fields are stored as the placeholder.
type AddCmd struct {
	Name     string `help:"Full name."`
	Phones   string `help:"Phone numbers separated by ';'."`
	Email    string `help:"Email address."`
	Address  string `help:"Postal address."`
	Birthday string `help:"Birthday as DD/MM/YYYY."`
}

// Run executes the add command.
func (c *AddCmd) Run(e *env) error {
	rep, err := e.book.AddContact(model.Contact{
		Name:         c.Name,
		PhoneNumbers: c.Phones,
		Email:        c.Email,
		Address:      c.Address,
		Birthday:     c.Birthday,
	})
	if err != nil {
		var serr *store.StorageError
		if errors.As(err, &serr) {
			return err
		}
		return fmt.Errorf("%s\n%s", config.MsgCorrectErrors, strings.TrimRight(rep.Error(), "\n"))
	}

	printWarnings(e.errw, rep.Warnings...)
	_, err = fmt.Fprintf(e.out, "added %q (%d contacts)\n", c.Name, e.book.Len())
	return err
}

// EditCmd replaces one field of the contact at Row.
type EditCmd struct {
	Row   int    `arg:"" help:"Row number as shown by list (1-based)."`
	Field string `arg:"" help:"Field: name, phone, email, address, birthday."`
	Value string `arg:"" help:"New value. Empty stores the placeholder."`
}

// Run executes the edit command.
func (c *EditCmd) Run(e *env) error {
	f, err := model.ParseField(c.Field)
	if err != nil {
		return err
	}
	ct, err := e.book.At(c.Row - 1)
	if err != nil {
		return err
	}

	updated, res, err := e.book.CommitEdit(ct, f, c.Value)
	if err != nil {
		return err
	}

	printWarnings(e.errw, res.Warning)
	if updated != nil {
		_, err = fmt.Fprintf(e.out, "%d: %s = %s\n", c.Row, f, updated.Get(f))
	}
	return err
}

// DeleteCmd removes the contact at Row.
type DeleteCmd struct {
	Row int `arg:"" help:"Row number as shown by list (1-based)."`
}

// Run executes the delete command.
func (c *DeleteCmd) Run(e *env) error {
	ct, err := e.book.At(c.Row - 1)
	if err != nil {
		return err
	}
	name := ct.Name
	if err := e.book.DeleteContact(ct); err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.out, "deleted %q (%d contacts)\n", name, e.book.Len())
	return err
}

// ImportCmd reads vCards from a local file or an http(s) URL.
type ImportCmd struct {
	Source   string `arg:"" help:"vCard file path or http(s) URL."`
	User     string `help:"Username for URL sources."`
	Password string `help:"Password for URL sources." env:"CONTACTS_PASSWORD"`
}

// Run executes the import command.
func (c *ImportCmd) Run(e *env, im *engine.Importer) error {
	cfg := engine.ImportConfig{Mode: config.SourceModeLocal, LocalPath: c.Source}
	if strings.HasPrefix(c.Source, "http://") || strings.HasPrefix(c.Source, "https://") {
		cfg = engine.ImportConfig{
			Mode:    config.SourceModeWeb,
			WebURL:  c.Source,
			WebUser: c.User,
			WebPass: c.Password,
		}
	}

	contacts, problems, err := im.Fetch(e.ctx, cfg)
	if err != nil {
		return err
	}

	added, rejected, err := e.book.Import(contacts)
	if err != nil {
		return err
	}

	skipped := append(append([]error(nil), problems...), rejected...)
	for _, p := range skipped {
		printWarnings(e.errw, p.Error())
	}
	_, err = fmt.Fprintf(e.out, "imported %d contact(s), %d issue(s) reported\n", added, len(skipped))
	return err
}

// ExportVCardCmd writes every contact as a vCard 4.0.
type ExportVCardCmd struct {
	File string `arg:"" help:"Destination file, or - for stdout."`
}

// Run executes the export-vcard command.
func (c *ExportVCardCmd) Run(e *env) error {
	return writeTo(c.File, e.out, func(w io.Writer) error {
		return engine.ExportVCard(w, e.book.Snapshot())
	})
}

// ExportICSCmd writes the birthday calendar.
type ExportICSCmd struct {
	File     string `arg:"" help:"Destination file, or - for stdout."`
	Reminder string `help:"ISO 8601 alarm offset, e.g. -P1D or -PT2H."`
}

// Run executes the export-ics command.
func (c *ExportICSCmd) Run(e *env, clock engine.Clock) error {
	cal := &engine.Calendar{Clock: clock, ReminderTrigger: c.Reminder}
	ics, _, _, err := cal.Generate(e.book.Snapshot())
	if err != nil {
		return err
	}
	return writeTo(c.File, e.out, func(w io.Writer) error {
		_, err := w.Write(ics)
		return err
	})
}

// CheckCmd classifies a value without touching the contacts file.
type CheckCmd struct {
	Field string `arg:"" help:"Field: name, phone, email, address, birthday."`
	Value string `arg:"" help:"Value to check."`
}

// Run executes the check command.
func (c *CheckCmd) Run(e *env) error {
	f, err := model.ParseField(c.Field)
	if err != nil {
		return err
	}

	res := e.book.Validate(f, c.Value)
	switch res.Status {
	case validate.Rejected:
		return res.Err
	case validate.AcceptedWithWarning:
		_, err = fmt.Fprintf(e.out, "%s: %s\n", res.Status, res.Warning)
	default:
		_, err = fmt.Fprintln(e.out, res.Status)
	}
	return err
}

func printWarnings(w io.Writer, warnings ...string) {
	for _, msg := range warnings {
		if msg != "" {
			_, _ = fmt.Fprintf(w, "warning: %s\n", msg)
		}
	}
}

// writeTo runs fn against stdout for "-" or a freshly created file.
func writeTo(path string, stdout io.Writer, fn func(io.Writer) error) (err error) {
	if path == "-" {
		return fn(stdout)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}

// deps are the collaborators commands receive besides env.
type deps struct {
	importer *engine.Importer
	clock    engine.Clock
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	d := deps{importer: engine.NewImporter(), clock: engine.RealClock{}}
	code := runCLI(ctx, os.Args[1:], os.Stdout, os.Stderr, d)
	stop()
	os.Exit(code)
}

// runCLI parses args, opens the address book and runs the selected command.
// Extra kong options let tests replace the exit hook.
func runCLI(ctx context.Context, args []string, stdout, stderr io.Writer, d deps, opts ...kong.Option) int {
	var cli CLI
	parser, err := kong.New(&cli, append([]kong.Option{
		kong.Name(config.CLIName),
		kong.Description("Manage the contacts file from the command line."),
		kong.Vars{"version": config.BuildString()},
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	}, opts...)...)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %s\n", err)
		return config.ExitCodeError
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %s\n", err)
		return config.ExitCodeError
	}

	setupLogging(stderr, cli.Debug)

	book, err := openBook(cli.Data, cli.Strict, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %s\n", err)
		return config.ExitCodeError
	}

	e := &env{ctx: ctx, book: book, out: stdout, errw: stderr}
	kctx.BindTo(d.clock, (*engine.Clock)(nil))
	if err := kctx.Run(e, d.importer); err != nil {
		slog.Debug(config.ErrCommandFailed,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyError, err)
		_, _ = fmt.Fprintf(stderr, "error: %s\n", err)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

// openBook loads the contacts file. Malformed lines reported under the
// Strict policy are printed and do not stop the command.
func openBook(path string, strict bool, stderr io.Writer) (*engine.Book, error) {
	if path == "" {
		p, err := store.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	policy := store.Lenient
	if strict {
		policy = store.Strict
	}

	slog.Debug(config.MsgDataFile,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyFile, path,
		config.LogKeyPolicy, policy.String())

	book := engine.NewBook(store.New(path, store.WithPolicy(policy)))
	if err := book.Load(); err != nil {
		if errors.Is(err, store.ErrStorage) {
			return nil, err
		}
		printWarnings(stderr, strings.Split(err.Error(), "\n")...)
	}
	return book, nil
}

// setupLogging sends JSON logs to stderr, warnings only unless debug is set.
func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}
