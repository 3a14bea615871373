// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/courrier/internal/log"
)

const usageText = `
Usage:
  courrier [OPTIONS] COMMAND

  Register incoming and outgoing correspondence.

Version:
  %s

Commands:
  start     Start the api server
  shell     Start an interactive administration shell

Options:
%s
`

var (
	// Version is set at compile-time.
	Version string
)

func main() {
	var configFilename string

	flags := pflag.NewFlagSet("courrier", pflag.ContinueOnError)
	flags.StringVarP(&configFilename, "config", "c", "", "Path to a configuration file")
	flags.Usage = printUsage(flags)

	if err := flags.Parse(os.Args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		log.Fatal().Err(err).Send()
	}

	switch commandName := flags.Arg(1); commandName {
	case "start", "shell":
		setupConfig(configFilename)
		setupLogger()
		printConfig()
		runCommand(commandName)
	default:
		flags.Usage()
	}
}

type command interface {
	run() error
}

func runCommand(commandName string) {
	var (
		cmd command
		err error
	)

	switch commandName {
	case "start":
		cmd, err = newStartCommand()
	case "shell":
		cmd, err = newShellCommand()
	}

	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize the application")
	}

	if err := cmd.run(); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func printUsage(flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, usageText,
			Version,
			flags.FlagUsages())
	}
}

func setupLogger() {
	if err := log.SetLevelFromViper(); err != nil {
		log.Fatal().Err(err).Msg("unknown log level")
	}
}

func setupConfig(filename string) {
	viper.SetTypeByDefaultValue(true)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("COURRIER")

	if filename != "" {
		readConfig(filename)
	} else {
		log.Info().Msg("no config file provided. using environment only")
	}
}

func readConfig(filename string) {
	log.Info().Str("filename", filename).Msg("loading configuration")
	viper.SetConfigFile(filename)

	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Warn().Err(err).Msg("configuration file missing")
		} else {
			log.Fatal().Err(err).Msg("could not load configuration")
		}
	}
}

func printConfig() {
	keys := viper.AllKeys()
	sort.Strings(keys)

	for _, key := range keys {
		if strings.Contains(key, "secret") || strings.Contains(key, "password") {
			continue
		}

		v, _ := json.Marshal(viper.Get(key))
		log.Debug().RawJSON(key, v).Msg("configuration")
	}
}
