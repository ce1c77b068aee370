// Package schemas holds the JSON Schemas for the files the CLI reads.
package schemas

import _ "embed"

// ResumeInputFile is the schema file name for input bundles.
const ResumeInputFile = "resume_input.schema.json"

// ResumeInput is the JSON Schema for an input bundle.
//
//go:embed resume_input.schema.json
var ResumeInput string
