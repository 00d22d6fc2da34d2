// sfv - structured field value tool
//
// Usage:
//
//	sfv fmt [--type T] [file]        Print the canonical form of a field
//	sfv check [--type T] [file]      Report whether a field is well formed
//	sfv to-json [--type T] [file]    Convert a field to test-suite JSON
//	sfv from-json [--type T] [file]  Serialize test-suite JSON as a field
//	sfv version                      Print version info
//
// T is item, list (default) or dictionary. If no file is given, reads from stdin.
package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/Neumenon/sfv/cmd/sfv/command"
)

func main() {
	if err := command.NewRoot().Execute(); err != nil {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		log.Error().Err(err).Msg("sfv failed")
		os.Exit(1)
	}
}
