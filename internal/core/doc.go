// Package core runs client roster imports.
//
// It ties the pipeline packages together and keeps the state an operator
// needs between uploading a file and committing it. It is independent of any
// transport and is used by the web handlers, the CLI and tests alike.
//
// # Import Flow
//
//  1. [Service.StartImport] parses the file ([tabular]), matches headers to
//     catalogue fields ([match]), validates every row ([transform]) and checks
//     emails against existing clients ([dedupe]). It returns a [Report] whose
//     ImportID names the session.
//  2. The operator corrects mappings with [Service.Remap] and decides every
//     duplicate with [Service.ResolveDuplicate] or [Service.ResolveAllDuplicates].
//     Remapping re-runs validation; decided duplicates keep their resolution.
//  3. [Service.Commit] hands new rows and overwrites to the [ClientStore].
//     Unresolved duplicates are skipped. [Service.Discard] drops the session.
//
// A session whose required fields are not all mapped is blocked: no rows are
// validated and Commit fails with [ErrImportBlocked].
//
// Idle sessions are removed by [Service.StartSessionSweeper] after
// [ServiceConfig].SessionTTL. Concurrent StartImport calls are bounded by an
// [ImportLimiter].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - PARSE001-PARSE003: File errors (type, binary content, empty)
//   - IMP001-IMP004: Import errors (size, concurrency, session, blocked)
//   - MAP001-MAP002: Mapping errors (unknown field or column)
//   - DUP001-DUP002: Duplicate resolution errors
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - REQ001-REQ004: Request errors (malformed, missing file, cancelled, timeout)
package core
