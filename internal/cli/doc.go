// Package cli implements the taskctl commands. Each report command fetches
// the users, projects and tasks collections through the API client and
// derives its view locally, so a collection that fails to load shows up as a
// notice above an otherwise complete report.
package cli
