// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/beevik/term"

	"github.com/weirdfoo/My6502/cpu"
	"github.com/weirdfoo/My6502/host"
)

var model string

func init() {
	flag.StringVar(&model, "c", "65c02", "CPU model (6502 or 65c02)")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: my6502 [options] [script] ..\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	var m cpu.Model
	switch strings.ToLower(model) {
	case "6502", "nmos":
		m = cpu.Original
	case "65c02", "cmos":
		m = cpu.CMOS65C02
	default:
		exitOnError(fmt.Errorf("unknown CPU model '%s'", model))
	}

	h := host.New(m)

	// Run commands contained in command-line files.
	args := flag.Args()
	for _, filename := range args {
		file, err := os.Open(filename)
		if err != nil {
			exitOnError(err)
		}
		h.RunCommands(file, os.Stdout, false)
		file.Close()
	}

	// Break on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go handleInterrupt(h, c)

	// Run commands interactively, prompting only when attached to a
	// terminal.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	h.RunCommands(os.Stdin, os.Stdout, interactive)
}

func handleInterrupt(h *host.Host, c chan os.Signal) {
	for {
		<-c
		h.Break()
	}
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
