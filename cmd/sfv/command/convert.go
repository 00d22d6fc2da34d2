package command

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Neumenon/sfv/sfv"
)

func (a *app) toJSONCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "to-json [file]",
		Short: "Convert a field to the JSON form of the structured field test suite.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.commandToJSON,
	}
}

func (a *app) commandToJSON(cmd *cobra.Command, args []string) error {
	v, err := a.parseInput(cmd, args)
	if err != nil {
		return err
	}
	out, err := sfv.ToJSON(v)
	if err != nil {
		return errors.Wrap(err, "encode json")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func (a *app) fromJSONCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "from-json [file]",
		Short: "Serialize a field given in test-suite JSON form.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.commandFromJSON,
	}
}

func (a *app) commandFromJSON(cmd *cobra.Command, args []string) error {
	in, err := input(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "read input")
	}
	v, err := sfv.FromJSON(a.typ, data)
	if err != nil {
		return errors.Wrapf(err, "decode %s json", a.typ)
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
