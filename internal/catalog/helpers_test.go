package catalog

import "app-selector/internal/request"

func requestFor(operation, mime, uri string) request.Context {
	return request.Context{Operation: operation, MIME: mime, URI: uri, CallerPID: -1}
}
