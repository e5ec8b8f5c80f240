// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.coursemate.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates with embedded defaults
//
// LoadDotEnv reads a .env file into the process environment so API keys can
// live beside the configuration instead of in the shell profile.
package file
