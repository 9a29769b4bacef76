// Package attrib attributes merge diagnostics to the fragments that caused
// them, treating the merge engine as a black box.
//
// Attribution runs three phases over the diagnostics of a failed full merge:
//
//   - isolation: each fragment is merged alone; its self-contained
//     diagnostics claim matching full-merge diagnostics (first match wins);
//   - exclusion: each fragment is left out in turn; a diagnostic that
//     vanishes names the omitted fragment as a candidate, and a diagnostic
//     with two or more candidates is reported as "multiple";
//   - tail: whatever neither phase localized is reported unattributed.
//
// Every full-merge diagnostic ends up in exactly one Record. Probes of a
// phase are independent and may run in parallel; results are reconciled in
// fragment order, so the report does not depend on Options.Jobs.
package attrib
