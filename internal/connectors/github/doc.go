// Package github implements a document source for course documents kept in
// a GitHub repository.
//
// A source names one repository, optionally narrowed to a directory and a
// ref: owner/repo[/path][@ref]. When no ref is given the repository's
// default branch is used. Every supported document below the path is
// fetched through the Git Data API (one recursive tree call, then one blob
// call per file).
//
// # Authentication
//
// A token is optional. Public repositories can be read without one at 60
// requests per hour; a personal access token raises that to 5,000 and is
// required for private repositories. The CLI reads it from GITHUB_TOKEN.
//
// # Rate limiting
//
// Requests are paced by a token bucket and, when the remaining quota
// reported by the API drops below a buffer, held until the quota resets.
package github
