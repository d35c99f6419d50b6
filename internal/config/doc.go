// Package config is the option model for kmecs.
//
// It turns a flat argument list (or the equivalent cobra flag set, optionally
// backed by a YAML zone file) into an immutable [DeployRequest] or
// [TeardownRequest]. Validation happens entirely up front and has no side
// effects besides reading the license file's metadata; every failure is a
// [*ValidationError] whose [Kind] tells the command layer to print usage.
//
// Process-wide settings that do not belong on the command line (wait bounds,
// AWS endpoint overrides, tool paths) are read from the environment into
// [Settings].
package config
