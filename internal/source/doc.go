// Package source turns raw file bytes into line documents and back.
//
// A Document is an ordered list of lines without their newline bytes. Input is
// split strictly on '\n'; every other byte, including '\r' and tabs, is kept
// verbatim unless the caller asks for normalisation through LoadOptions.
package source
