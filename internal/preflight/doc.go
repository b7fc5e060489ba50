// Package preflight provides readiness checks for the files and programs a
// splice run depends on.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before reading any table. If a check fails,
//     the run stops before the oracle is built or the output is touched.
//   - The CLI "opacsplice check" command prints every result, including the
//     oracle dependencies from CheckSystemDeps.
package preflight
