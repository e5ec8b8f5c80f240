// Package html provides a Normaliser implementation for HTML course documents,
// such as lesson pages exported from a learning platform. It strips tags,
// scripts and styles and decodes entities, keeping one block element per line
// so that course headers and lesson markers survive.
package html
