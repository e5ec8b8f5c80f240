// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The retrieval pipeline lives here: CourseIndex keeps the catalog and
// content collections, SearchTool exposes filtered search to the model,
// QueryService runs the tool-calling loop and IngestService feeds the index.
package services
