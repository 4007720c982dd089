package main

import (
	"flag"
	"os"

	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/spf13/pflag"
)

const version = "0.2.0"

func main() {
	// -v, -logtostderr, -log_dir and friends
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	err := newRootCmd().Execute()
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
	}
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
