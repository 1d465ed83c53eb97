//go:build !nosdl

package main

// The SDL backend loads the SDL3 shared library when the program starts.
// Build with -tags nosdl for hosts that only use evdev, remote or static.
import _ "github.com/soar/simrx/internal/sdlreader"
