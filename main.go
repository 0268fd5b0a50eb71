/*
 * AXP-CORE - Main process.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/axp"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/config"
	"github.com/timothyPeer/ASA-EMulatR-Project-sub003/internal/trace"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "axp.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optBinary := getopt.StringLong("binary", 'b', "", "Raw binary image to load at address 0")
	optDebug := getopt.BoolLong("debug", 'd', "Enable verbose tracing")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	Logger = slog.New(trace.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, *optDebug))
	slog.SetDefault(Logger)

	Logger.Info("AXP-CORE Started")

	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		Logger.Error("configuration file not found", "path", *optConfig)
		os.Exit(1)
	}

	cfg, err := config.LoadJSONFile(*optConfig)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	mask := trace.DebugCPU | trace.DebugPAL
	if *optDebug {
		mask |= trace.DebugTLB | trace.DebugCache | trace.DebugSMP | trace.DebugDevice
	}
	sink := trace.NewSlogSink(Logger, mask)

	sys, err := axp.Initialize(*cfg, sink)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	if *optBinary != "" {
		if err := sys.LoadBinary(*optBinary, 0); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	// Start main emulator.
	sys.Start()

	// Wait for a SIGINT or SIGTERM signal to gracefully shut down.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msg := make(chan string, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		// Receive commands from stdin
		for {
			input, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			msg <- input
		}
	}()

loop:
	for {
		select {
		case <-sigChan:
			fmt.Println("Got quit signal")
			break loop
		case line := <-msg:
			fmt.Printf("unrecognized command: %q\n", line)
		}
	}

	Logger.Info("Shutting down CPU")
	sys.Stop()
	Logger.Info("Servers stopped.")
}
