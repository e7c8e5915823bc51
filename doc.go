// Package snapshot asserts that values match JSON snapshots recorded in
// files next to the tests.
//
// # Usage
//
// A test binary runs one Run, usually through TestMain:
//
//	func TestMain(m *testing.M) {
//	    os.Exit(snapshot.Main(m))
//	}
//
//	func TestUser(t *testing.T) {
//	    snapshot.Expect(t, user).Ignoring("createdAt").MatchSnapshot()
//	}
//
// The first evaluation of a snapshot records it. Later evaluations
// compare the serialized value with the recorded text and fail on any
// difference. With update mode on (SNAPSHOT_UPDATE=1) every evaluation
// overwrites the recorded value instead.
//
// # Identifiers
//
// Each snapshot is named by its unit (the package name), its member (the
// test function) and an optional scenario:
//
//	users.TestUser=
//	users.TestUser[empty]=
//
// A Run refuses to evaluate the same identifier twice. Use ExpectScenario
// or Assertion.Named to give several assertions in one test distinct
// names.
//
// # Files
//
// The snapshots of a unit live in <basePath>/<unit>.snap, by default
// testdata/snapshots/<package>.snap. The run writes each file once, in
// End, and warns about stored snapshots that no test evaluated.
//
// # Serialization
//
// Values are converted with ir.FromValue, which follows encoding/json
// conventions and reports ErrCycle for self referencing values. The
// default serialization is encode.JSON: sorted keys, no null fields,
// two-space indentation.
package snapshot
