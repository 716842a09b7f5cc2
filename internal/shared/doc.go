// Package shared holds small helpers used across packages that do not
// belong to any one layer.
//
// The testutil subpackage carries test-only utilities, currently the
// slog capture handler used to assert on structured log output. Code in
// this tree must stay free of domain logic and of dependencies on other
// internal packages.
package shared
