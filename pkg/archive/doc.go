// Package archive stores analysis artifacts (raw OCR text plus the parsed
// result) for audit purposes. S3 backs production; a local directory backs
// development and tests.
package archive
