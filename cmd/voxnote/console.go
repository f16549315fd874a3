package main

import (
	"fmt"
	"os"
)

// console prints pipeline progress to stderr, keeping stdout clean for the
// final result paths.
type console struct{}

func newConsole() console { return console{} }

func (console) Status(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

func (console) Progress(fraction float64) {
	fmt.Fprintf(os.Stderr, "\r%3.0f%% ", fraction*100)
	if fraction >= 1 {
		fmt.Fprintln(os.Stderr)
	}
}

func (console) Done(string) {}

func (console) Error(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
}
