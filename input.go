// Request input: building the bundle from flags, a file or stdin.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"app-selector/internal/request"
)

type selectorError struct {
	op  string
	msg string
}

func (e *selectorError) Error() string {
	return e.op + ": " + e.msg
}

var (
	errOperationRequired = &selectorError{op: "request", msg: "operation required"}
	errLocaleRequired    = &selectorError{op: "locale", msg: "locale tag required"}
	errDirRequired       = &selectorError{op: "catalog import", msg: "manifest directory required"}
)

type pickOptions struct {
	bundlePath string
	operation  string
	mime       string
	uri        string
	windowID   string
	callerPID  int
	callerNoti string
	extra      []string
}

func pickFlags(o *pickOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("pick", pflag.ContinueOnError)
	fs.StringVar(&o.bundlePath, "bundle", "", "read the request bundle (JSON) from `FILE`, - for stdin")
	fs.StringVar(&o.operation, "operation", "", "app control operation")
	fs.StringVar(&o.mime, "mime", "", "MIME type of the data")
	fs.StringVar(&o.uri, "uri", "", "URI of the data")
	fs.StringVar(&o.windowID, "window-id", "", "window id passed to the launched app")
	fs.IntVar(&o.callerPID, "caller-pid", -1, "pid of the requesting process")
	fs.StringVar(&o.callerNoti, "caller-noti", "", "app id to notify when the picker ends")
	fs.StringArrayVar(&o.extra, "extra", nil, "explicit candidate app `ID` (repeatable)")
	return fs
}

// parsePickArgs builds the request bundle for the pick command. Flags
// override keys read from --bundle.
func parsePickArgs(args []string, stdin io.Reader) (*request.Bundle, error) {
	var o pickOptions
	fs := pickFlags(&o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &selectorError{op: "pick", msg: "unexpected argument " + fs.Arg(0)}
	}

	b := request.NewBundle()
	if o.bundlePath != "" {
		var err error
		if b, err = readBundle(o.bundlePath, stdin); err != nil {
			return nil, err
		}
	}

	set := func(flag, key, val string) {
		if fs.Changed(flag) {
			b.Set(key, val)
		}
	}
	set("operation", request.KeyOperation, o.operation)
	set("mime", request.KeyMIME, o.mime)
	set("uri", request.KeyURI, o.uri)
	set("window-id", request.KeyWindowID, o.windowID)
	set("caller-noti", request.KeyCallerNoti, o.callerNoti)
	set("caller-pid", request.KeyCallerPID, strconv.Itoa(o.callerPID))
	if fs.Changed("extra") {
		b.SetArray(request.KeyExtraList, o.extra)
	}
	return b, nil
}

func readBundle(path string, stdin io.Reader) (*request.Bundle, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	b := request.NewBundle()
	if err := json.Unmarshal(data, b); err != nil {
		return nil, err
	}
	return b, nil
}
