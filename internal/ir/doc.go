// Package ir provides the runtime type descriptors and constant values that
// expression graphs are built from.
//
// This package contains leaf definitions only. queryir, dialect and querysql
// import ir; ir imports nothing internal.
//
// Two concepts live here:
//   - Type: the declared type of a node (int32, string, datetime, an enum,
//     a nullable wrapper, an object shape or a sequence of constants).
//   - IRValue: a sealed set of constant payloads (IRNull, IRString, IRInt,
//     IRFloat, IRDecimal, IRBool, IRDateTime, IRDuration, IRGuid, IRSequence).
//
// Values have a canonical Key so that the parameter context can register
// equal constants once. Keys are type-tagged: the string "18" and the
// integer 18 never collide.
package ir
