// Package audit provides a tamper-evident, append-only audit trail for
// generation request cycles.
//
// Each record is chained to its predecessor: the record's canonical JSON
// serialization is concatenated with the previous record's hash and digested
// with SHA-256. The first record in a partition chains to a genesis value of
// 64 zero characters. Records are appended one JSON object per line to files
// partitioned by UTC calendar date, and the partition files are the durable,
// externally inspectable artifact.
//
// Privacy is enforced at the write boundary: raw prompt text and raw user
// identifiers are reduced to truncated one-way hashes before a record is
// built, and only industry, data classification, and risk level survive from
// the request context. Raw values never reach disk.
//
// VerifyIntegrity re-walks a partition from genesis, reporting broken-chain
// and tampered-record violations as structured findings. Verification never
// stops at the first problem; it enumerates everything it finds.
package audit
