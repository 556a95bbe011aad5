// Package compiler provides the lexer, parser and code generator for a
// single-letter-variable expression language that targets x86-64 assembly.
//
// Pipeline: source → Lex → Parse → Generate → Intel-syntax assembly text
package compiler
