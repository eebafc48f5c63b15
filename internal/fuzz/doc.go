// Package fuzztests houses Go fuzz harnesses for the front end and the
// evaluator: arbitrary bytes go through the lexer, the parser and a full
// check, which must neither panic nor hang.
//
// Назначение: прогонять произвольный ввод через FileSet, лексер, парсер и
// evaluator.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
