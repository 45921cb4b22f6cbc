// Package fuzztests houses Go fuzz harnesses that drive the formatting
// pipeline (source -> split -> indent) with arbitrary bytes and options. They
// guard against panics and check the invariants from internal/testkit on
// every input.
//
// Не делает: запись файлов, кэш, выполнение CLI.
package fuzztests
