// Package connectors groups the document sources that feed ingestion. Each
// subpackage implements driven.DocumentSource for one location type:
//
//   - filesystem: a local folder or file, with change watching
//   - github: a path inside a GitHub repository
package connectors
