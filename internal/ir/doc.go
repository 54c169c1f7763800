// Package ir provides the intermediate representation shared by every
// confflow package.
//
// This package contains plain data types and a content digest over them.
// All other internal packages import ir; ir imports nothing internal, so
// the CUE compiler, the rule engine and the document loader can all speak
// about the same identifiers without depending on each other.
//
// Key design constraints:
//   - Identifiers are NFC-normalised at every construction boundary
//   - A Selection is immutable once built
//   - All JSON tags use snake_case
package ir
