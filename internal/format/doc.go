// Package format contains the line-oriented formatting passes.
//
// Two passes compose in order: SplitLines breaks a line after a delimiter
// byte, and Engine recomputes the leading whitespace of every line from the
// nesting of increase/decrease bytes (brackets in practice). Neither pass
// knows anything about a language grammar: every tracked byte counts, even
// inside what would be a string literal or a comment.
//
// Не делает: IO, разбор аргументов, чтение конфигурации.
// Зависимости: internal/source.
package format
