// Package reftext implements a human-readable text codec for the JSON data
// model extended with undefined, arbitrary-precision integers, dates, and
// shared or cyclic arrays and objects.
//
// # Format
//
// Text is JSON with four additions:
//
//	undefined                       the missing value
//	n734n  n-5n                     bigints
//	@"2024-01-01T00:00:00.000Z"@    dates (UTC, millisecond precision)
//	//  /["0"]/{"key"}/             reference paths
//
// Numbers also admit Infinity, -Infinity and NaN. A reference path names a
// previously written array or object by the indices and keys leading to it
// from the root; "//" is the root itself. A self-referencing array therefore
// serializes as:
//
//	[//]
//
// and an array holding the same object twice as:
//
//	[{"x":1},/["0"]/]
//
// # Values
//
// [Serialize] accepts nil, [Undefined], bool, every Go integer and float type,
// *big.Int, time.Time, [Date], string, []any, map[string]any, and the
// identity-bearing [Array] and [Object]. Map keys are written in sorted order;
// *Object keeps insertion order. Functions and channels are skipped: dropped
// from objects, written as undefined in arrays.
//
// [Deserialize] always returns *Array for arrays and *Object for objects, so
// identity survives a round trip:
//
//	v, _ := reftext.Deserialize(`[//]`)
//	a := v.(*reftext.Array)
//	a.At(0) == a // true
//
// # Traversal
//
// Neither direction uses the call stack for nesting: the lexer links open
// containers to their parents, and serialization walks an explicit stack.
// The first location a depth-first, left-to-right walk reaches for each
// container is where it is written in full; [Locations] reports those paths.
//
// # Errors
//
// Deserialization fails with a *[DeserializeError] carrying a MALFORMED or
// BUG code and the [CharacterLocation] of the problem. Serialization fails
// with a *[SerializeError] carrying INVALID_DATE, UNSUPPORTED or BUG and the
// reference path of the offending value. Both unwrap to *errors.Error from
// pkg/errors, so errors.GetCode works on either.
//
// # Concurrency
//
// Serialize and Deserialize keep all state local to the call and may be used
// from many goroutines. The value passed to Serialize must not be mutated
// while it is being serialized.
package reftext
