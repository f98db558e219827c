// Package receipt turns OCR text into structured tax analysis. The AI prompt
// is tiered by subscription plan and aware of the user's jurisdiction and
// work type. A credit is only spent when the model finds a plausible receipt,
// so blurry photos and random text stay free.
package receipt
