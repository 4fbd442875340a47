// Package shared holds helpers used by more than one package. Test helpers
// live in the testutil subpackage and must not be imported by production code.
package shared
