package test

import (
	"math/rand"
	"strings"
)

// validTokens is a semicolon-separated pool of tokens the lexer recognizes, spanning
// keywords, operators, punctuation, and literals, used to synthesize load for the
// lexer benchmarks.
const validTokens = "local;function;if;then;else;end;while;do;for;in;return;nil;true;false;and;or;not;print;x;y;table;=;==;~=;<=;>=;<;>;+;-;*;/;%;^;#;(;);{;};[;];,;.;..;123;3.14;1e10;0x1F;\"a string literal\";\"another one with spaces in it\";\n"

// GetRandomTokens joins size random tokens from validTokens with a single space.
func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

// GetRandomTokensWithSep joins size random tokens from validTokens with sep.
func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}
