package captcha

// Number-word tables. Compound numbers are assembled in parse (e.g.
// "four hundred and seven" → 407), so only the atoms live here.

var unitWords = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
}

var teenWords = map[string]int64{
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tenWords = map[string]int64{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// Common misspellings seen in actual challenges.
var altWords = map[string]int64{
	"fourty": 40,
	"nineteeen": 19,
}

var magnitudeWords = map[string]int64{
	"hundred":  100,
	"thousand": 1000,
}

// Operator vocabulary. Multi-word forms ("added to", "take away",
// "multiplied by", "divided by") reduce to their head word; the trailing
// particle is filler.
var opWords = map[string]Op{
	"plus":       OpAdd,
	"add":        OpAdd,
	"added":      OpAdd,
	"sum":        OpAdd,
	"combined":   OpAdd,
	"minus":      OpSub,
	"subtract":   OpSub,
	"subtracted": OpSub,
	"less":       OpSub,
	"fewer":      OpSub,
	"difference": OpSub,
	"take":       OpSub,
	"remove":     OpSub,
	"times":      OpMul,
	"multiply":   OpMul,
	"multiplied": OpMul,
	"product":    OpMul,
	"x":          OpMul,
	"divided":    OpDiv,
	"divide":     OpDiv,
	"over":       OpDiv,
	"quotient":   OpDiv,
	"split":      OpDiv,
}

var opSymbols = map[string]Op{
	"+": OpAdd,
	"-": OpSub,
	"−": OpSub,
	"*": OpMul,
	"×": OpMul,
	"/": OpDiv,
	"÷": OpDiv,
}
