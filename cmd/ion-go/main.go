/*
 * Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License").
 * You may not use this file except in compliance with the License.
 * A copy of the License is located at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * or in the "license" file accompanying this file. This file is distributed
 * on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
 * express or implied. See the License for the specific language governing
 * permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Populated via -ldflags at build time.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if len(os.Args) <= 1 {
		printHelp()
		return
	}

	var err error

	switch os.Args[1] {
	case "help", "--help", "-h":
		printHelp()

	case "version", "--version", "-v":
		printVersion()

	case "process":
		err = process(os.Args[2:])

	default:
		err = fmt.Errorf("unrecognized command %q", os.Args[1])
	}

	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Usage:")
	fmt.Println("  ion-go help")
	fmt.Println("  ion-go version")
	fmt.Println("  ion-go process [options] [file ...]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  help       Prints this help message.")
	fmt.Println("  version    Prints version information about this tool.")
	fmt.Println("  process    Reads the input file(s), or stdin, and re-writes the")
	fmt.Println("             contents in the requested format.")
	fmt.Println()
	fmt.Println("Process options:")
	fmt.Println("  -o, --output <file>     Write output to <file> instead of stdout.")
	fmt.Println("  -f, --format <format>   One of pretty (default), text, binary, or none.")
	fmt.Println("  -c, --catalog <file>    Load shared symbol tables from a TOML manifest.")
	fmt.Println("      --verbose           Enable debug logging.")
}

func printVersion() {
	fmt.Printf("ion-go %s (built %s)\n", version, buildTime)
}
