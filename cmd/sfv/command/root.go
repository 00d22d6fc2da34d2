// Package command holds the sfv command tree.
package command

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Neumenon/sfv/sfv"
)

const (
	Version = "0.1.0"
	rfc     = "RFC 8941"
)

// app carries the state shared by every subcommand of one command tree.
type app struct {
	v   *viper.Viper
	log zerolog.Logger

	typ  sfv.FieldType
	opts sfv.ParseOptions
}

// NewRoot builds a fresh command tree. Each call has its own flag and config
// state, so trees can be executed side by side in tests.
func NewRoot() *cobra.Command {
	a := &app{v: viper.New(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "sfv",
		Short: "Parse, check and format HTTP structured field values.",
		Long: "`sfv` reads structured field values (" + rfc + ") from a file or stdin.\n\n" +
			"Every input line is one field line. Lines of a list or dictionary are\n" +
			"combined in order, as a recipient combines repeated header lines.\n" +
			"Flags may also be set through SFV_* environment variables or a config file.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           Version,
		PersistentPreRunE: a.preRun,
	}
	RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		a.fmtCommand(),
		a.checkCommand(),
		a.toJSONCommand(),
		a.fromJSONCommand(),
		versionCommand(),
	)
	return root
}

// RegisterFlags installs the flags shared by all subcommands.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("type", "t", string(sfv.FieldList), "Field shape: item, list or dictionary.")
	fs.String("config", "", "Config file holding flag values (yaml, toml or json).")
	fs.Bool("verbose", false, "Log debug output to stderr.")
	fs.Int("max-length", 0, "Reject field lines longer than this many bytes (0 = no limit).")
	fs.Int("max-members", 0, "Reject lists and dictionaries with more members (0 = no limit).")
	fs.Int("max-parameters", 0, "Reject parameter sets with more entries (0 = no limit).")
	fs.Int("max-inner-list-items", 0, "Reject inner lists with more items (0 = no limit).")
}

func (a *app) preRun(cmd *cobra.Command, _ []string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind flags")
	}
	a.v.SetEnvPrefix("SFV")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", file)
		}
	}

	level := zerolog.WarnLevel
	if a.v.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	a.log = newLogger(cmd.ErrOrStderr(), level)

	typ, err := sfv.ParseFieldType(a.v.GetString("type"))
	if err != nil {
		return err
	}
	a.typ = typ
	a.opts = sfv.ParseOptions{
		MaxLength:         a.v.GetInt("max-length"),
		MaxMembers:        a.v.GetInt("max-members"),
		MaxParameters:     a.v.GetInt("max-parameters"),
		MaxInnerListItems: a.v.GetInt("max-inner-list-items"),
	}

	a.log.Debug().
		Str("type", string(a.typ)).
		Str("config", a.v.ConfigFileUsed()).
		Int("max_length", a.opts.MaxLength).
		Int("max_members", a.opts.MaxMembers).
		Msg("configuration loaded")
	return nil
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Str("src", "sfv").
		Logger()
}

// input opens the file named by args, or stdin when there is none or it is "-".
func input(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", args[0])
	}
	return f, nil
}

// readLines splits the input into field lines. A final newline does not start
// another line and CR before LF is dropped.
func readLines(r io.Reader) ([][]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	text := strings.TrimSuffix(string(data), "\n")
	var lines [][]byte
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, []byte(strings.TrimSuffix(line, "\r")))
	}
	return lines, nil
}

// parseInput reads every field line of the input and combines them into one
// value of the configured shape.
func (a *app) parseInput(cmd *cobra.Command, args []string) (sfv.FieldValue, error) {
	in, err := input(cmd, args)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	lines, err := readLines(in)
	if err != nil {
		return nil, err
	}
	v, err := sfv.ParseFieldLines(a.typ, lines, a.opts)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", a.typ)
	}
	a.log.Debug().Int("lines", len(lines)).Str("type", string(a.typ)).Msg("parsed field")
	return v, nil
}
