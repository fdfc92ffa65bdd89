// Package ocr detects text lines in screenshots with Tesseract.
//
// The Tesseract type implements backend.Detector. It groups Tesseract's output into
// text lines (RIL_TEXTLINE), which match UI labels and buttons better than single
// words, and maps two-letter language codes to Tesseract's own codes.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-fra (for French)
//   - Other languages: tesseract-ocr-<lang> packages
//
// # Supported Languages
//
//   - "en" -> "eng", "fr" -> "fra", "de" -> "deu", "es" -> "spa", "it" -> "ita"
//   - "pt" -> "por", "zh" -> "chi_sim", "ja" -> "jpn", "ko" -> "kor"
//   - anything else -> "eng"
//
// # Performance Considerations
//
// OCR is CPU-intensive and each call creates its own Tesseract client, so Detect is
// safe to call from several goroutines. Results are normally wrapped in a
// backend.CachedDetector so a screenshot is only recognized once.
package ocr
