// Package basisnative provides an optional CGO-backed ports.Engine around the
// upstream C++ Basis Universal transcoder.
//
// By default this package builds in "disabled" mode (pure Go, no CGO) and New
// returns an error. To enable it, place the upstream transcoder sources under
// internal/basisu/upstream/transcoder and build with:
//
//	-tags basisu_native
//
// and ensure CGO is enabled (e.g. `CGO_ENABLED=1`).
//
// Container introspection is served by the pure-Go reader in basisgo; the
// native library is used for validation and transcoding.
package basisnative
