// Package backend defines the contracts for text detection and translation services
// and the helpers the concrete backends share.
//
// A Detector locates text in a screenshot. A Translator reads the screenshot as a
// whole and returns translations, the source language and a suggested title. The
// annotation pipeline depends only on these two interfaces; concrete backends live in
// subpackages (openai, gemini, claude) and in internal/ocr, and are selected by name
// through internal/backend/registry.
//
// # Vision responses
//
// Hosted vision models are asked for a JSON object of the form
//
//	{
//	  "title": "Settings dialog",
//	  "source_languages": ["ja"],
//	  "elements": [{"bbox": [x1, y1, x2, y2], "text": "保存", "translation": "Save"}]
//	}
//
// ParseVisionResponse extracts that object from free text and maps bounding boxes
// from the uploaded image back to source pixels.
//
// # Caching
//
// CachedDetector and CachedTranslator wrap any backend with a cache.Store keyed by a
// fingerprint of the decoded pixels, the language and the backend's prompt version.
package backend
