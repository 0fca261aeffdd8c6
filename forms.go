// Form definitions using the huh library for composing a request by hand.
package main

import (
	"strings"

	"github.com/charmbracelet/huh"

	"app-selector/internal/request"
)

type composeValues struct {
	operation string
	mime      string
	uri       string
	extra     string
}

// composeForm asks for the parts of an app control request. ops are offered
// as suggestions for the operation.
func composeForm(ops []string, v *composeValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("operation").
				Title("Operation").
				Placeholder("share").
				Suggestions(ops).
				Value(&v.operation).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errOperationRequired
					}
					return nil
				}),
			huh.NewInput().
				Key("mime").
				Title("MIME Type").
				Placeholder("image/png").
				Value(&v.mime),
			huh.NewInput().
				Key("uri").
				Title("URI").
				Placeholder("file:///path/to/file").
				Value(&v.uri),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("extra").
				Title("Explicit Apps").
				Description("Space separated app ids shown before discovered ones").
				Value(&v.extra),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (v composeValues) bundle() *request.Bundle {
	b := request.NewBundle()
	b.Set(request.KeyOperation, strings.TrimSpace(v.operation))
	if s := strings.TrimSpace(v.mime); s != "" {
		b.Set(request.KeyMIME, s)
	}
	if s := strings.TrimSpace(v.uri); s != "" {
		b.Set(request.KeyURI, s)
	}
	if ids := strings.Fields(v.extra); len(ids) > 0 {
		b.SetArray(request.KeyExtraList, ids)
	}
	return b
}
