// Package cim defines the CIM wire-type tags used by the instrumentation
// service and the closed, statically-typed value model that decoded
// properties are marshaled into.
//
// The package has two halves:
//
//   - Type: the service's tag enumeration. A tag identifies one of the
//     thirteen supported scalar representations, optionally combined with
//     FlagArray. The array flag and the base tag are orthogonal bits;
//     Base() strips the flag, IsArray() tests it.
//
//   - Value: a sealed sum type with one variant per supported scalar and
//     one variant per ordered sequence of that scalar. Exactly one variant
//     is active at a time, and no tag maps to more than one variant.
//
// cim has no dependencies; decoding foreign representations into Values
// lives in the wmi package.
package cim
