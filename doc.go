// Package phin provides rule-driven normalization and dataization of
// φ-calculus programs.
//
// The term syntax is in package 'syntax', the pattern matcher in
// 'match', the rewrite driver in 'rewrite', the dataization
// interpreter in 'dataize', and the command-line tool in 'cmd/phin'.
//
// See https://github.com/phicalculus/phin/blob/master/README.md for
// more.
package phin
