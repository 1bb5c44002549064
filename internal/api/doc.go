// Package api exposes deck generation over HTTP. Section runs start
// asynchronously and report through the progress registry; single-item
// regeneration runs inline. Handlers translate domain, store and generation
// errors to status codes and never return raw error text to clients.
package api
