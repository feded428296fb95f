//go:build linux
// +build linux

// Package config turns command-line arguments and an optional INI file into
// validated server options.
package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/ini.v1"

	"github.com/hodgesds/tinyhttpd"
)

var (
	// ErrNoArguments is returned when the command line is empty.
	ErrNoArguments = errors.New("no arguments given")

	// ErrHelp is returned when usage was requested.
	ErrHelp = pflag.ErrHelp
)

// Options are the validated server settings.
type Options struct {
	Port        int
	Capacity    int
	WaitTimeout time.Duration
	IOTimeout   time.Duration
	LogLevel    string
	ConfigFile  string
}

// Default returns the options used when nothing overrides them.
func Default() Options {
	return Options{
		Port:        tinyhttpd.DefaultPort,
		Capacity:    tinyhttpd.DefaultCapacity,
		WaitTimeout: tinyhttpd.DefaultWaitTimeout,
		IOTimeout:   tinyhttpd.DefaultIOTimeout,
		LogLevel:    "info",
	}
}

type fileConfig struct {
	Server struct {
		Port        int           `ini:"port"`
		Capacity    int           `ini:"capacity"`
		WaitTimeout time.Duration `ini:"wait_timeout"`
		IOTimeout   time.Duration `ini:"io_timeout"`
	} `ini:"server"`
	Log struct {
		Level string `ini:"level"`
	} `ini:"log"`
}

// LoadIni applies the [server] and [log] sections of fileName to o. Keys that
// are absent leave o unchanged.
func LoadIni(o *Options, fileName string) error {
	iniFile, err := ini.Load(fileName)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", fileName)
	}
	var fc fileConfig
	fc.Server.Port = o.Port
	fc.Server.Capacity = o.Capacity
	fc.Server.WaitTimeout = o.WaitTimeout
	fc.Server.IOTimeout = o.IOTimeout
	fc.Log.Level = o.LogLevel
	if err := iniFile.MapTo(&fc); err != nil {
		return errors.Wrapf(err, "failed to map %s", fileName)
	}
	o.Port = fc.Server.Port
	o.Capacity = fc.Server.Capacity
	o.WaitTimeout = fc.Server.WaitTimeout
	o.IOTimeout = fc.Server.IOTimeout
	o.LogLevel = fc.Log.Level
	return nil
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tinyhttpd", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringP("port", "p", strconv.Itoa(tinyhttpd.DefaultPort), "listening port (1-65535)")
	fs.StringP("config", "c", "", "INI configuration file")
	fs.IntP("capacity", "n", tinyhttpd.DefaultCapacity, "maximum number of active client connections")
	fs.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	fs.BoolP("help", "h", false, "show this help")
	return fs
}

// Usage writes the usage text to w.
func Usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: tinyhttpd [options]\n\nOptions:\n%s", newFlagSet().FlagUsages())
}

// Parse parses args, which exclude the program name. Values given on the
// command line win over the configuration file.
func Parse(args []string) (Options, error) {
	o := Default()
	if len(args) == 0 {
		return o, ErrNoArguments
	}

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if help, _ := fs.GetBool("help"); help {
		return o, ErrHelp
	}

	if fs.Changed("config") {
		o.ConfigFile, _ = fs.GetString("config")
		if err := LoadIni(&o, o.ConfigFile); err != nil {
			return o, err
		}
	}

	if fs.Changed("port") {
		raw, _ := fs.GetString("port")
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || !tinyhttpd.ValidPort(port) {
			return o, errors.Errorf("Invalid option --port %s: Illegal port number.", raw)
		}
		o.Port = port
	}
	if fs.Changed("capacity") {
		o.Capacity, _ = fs.GetInt("capacity")
	}
	if fs.Changed("log-level") {
		o.LogLevel, _ = fs.GetString("log-level")
	}

	return o, o.Validate()
}

// Validate checks that o can configure a server.
func (o Options) Validate() error {
	if !tinyhttpd.ValidPort(o.Port) {
		return errors.Errorf("Invalid option --port %d: Illegal port number.", o.Port)
	}
	if o.Capacity < 1 {
		return errors.Errorf("invalid capacity %d", o.Capacity)
	}
	if o.WaitTimeout <= 0 {
		return errors.Errorf("invalid wait timeout %s", o.WaitTimeout)
	}
	if o.IOTimeout <= 0 {
		return errors.Errorf("invalid io timeout %s", o.IOTimeout)
	}
	return nil
}

// ServerOptions converts o into options for tinyhttpd.New.
func (o Options) ServerOptions() []tinyhttpd.ServerOption {
	return []tinyhttpd.ServerOption{
		tinyhttpd.WithCapacity(o.Capacity),
		tinyhttpd.WithWaitTimeout(o.WaitTimeout),
		tinyhttpd.WithIOTimeout(o.IOTimeout),
	}
}
