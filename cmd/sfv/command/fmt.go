package command

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Neumenon/sfv/sfv"
)

func (a *app) fmtCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "fmt [file]",
		Aliases: []string{"format"},
		Short:   "Print the canonical serialization of a field.",
		Long: "Parses the input and prints its canonical form on one line.\n" +
			"An empty list or dictionary prints nothing, since such a field is omitted.",
		Args: cobra.MaximumNArgs(1),
		RunE: a.commandFmt,
	}
}

func (a *app) commandFmt(cmd *cobra.Command, args []string) error {
	v, err := a.parseInput(cmd, args)
	if err != nil {
		return err
	}
	s, err := sfv.Serialize(v)
	if sfv.IsEmptyField(err) {
		a.log.Info().Str("type", string(a.typ)).Msg("field is empty, nothing to print")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "serialize")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
	return err
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Report whether the input is a well-formed field.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.commandCheck,
	}
}

func (a *app) commandCheck(cmd *cobra.Command, args []string) error {
	v, err := a.parseInput(cmd, args)
	if err != nil {
		var perr *sfv.ParseError
		if errors.As(err, &perr) {
			a.log.Warn().Int("offset", perr.Offset).Str("reason", perr.Message).Msg("malformed field")
		}
		return err
	}
	members := 1
	switch val := v.(type) {
	case sfv.List:
		members = len(val)
	case *sfv.Dictionary:
		members = val.Len()
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s with %d member(s)\n", a.typ, members)
	return err
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sfv %s (%s)\n", Version, rfc)
		},
	}
}
