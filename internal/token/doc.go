// Package token defines lexical token kinds for the Haxe subset understood by hxinfer.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - `>` is always lexed alone (except `>=`); the parser glues `>>`/`>>>`
//     from adjacent tokens so nested generics like Array<Array<Int>> close cleanly.
//   - Metadata such as `@:structInit` is one Meta token whose Text keeps the prefix.
//   - Contextual words (`from`, `to`) are identifiers; the parser checks their text.
package token
