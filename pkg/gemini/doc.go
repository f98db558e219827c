// Package gemini is a thin client for the Google Generative Language API.
// Only text-in/text-out completion is exposed; response interpretation is
// the caller's concern.
package gemini
