// Package api exposes the task tracker over HTTP. Handlers decode and
// validate requests, resolve the authenticated user, call the services and
// translate their errors into status codes and safe messages.
package api
