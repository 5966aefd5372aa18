// Package core provides the business logic for turning raw reference tables
// into grid payloads.
//
// This package is the heart of gamegrid, containing all domain logic
// independent of any UI or transport layer. It can be used by the HTTP
// server, the gridctl CLI, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - RawTable: headers and rows exactly as a loader read them.
//   - Normalizer: cleans headers, drops empty rows and columns, and infers
//     a [ColumnDefinition] per column.
//   - GridPayload: the rows plus column definitions handed to a grid UI.
//   - Registry: holds one payload (or one load error) per page tab.
//
// # Normalization
//
// A [Normalizer] is configured once per page with [Options]:
//
//	n := core.NewNormalizer(core.Options{
//	    IdentityColumn: "Skill",
//	    DropColumns: []core.ColumnPredicate{
//	        {Prefix: "Extra"},
//	        {Equals: "T2"},
//	    },
//	})
//	payload := n.Payload(raw)
//
// The flow is:
//
//  1. [Normalizer.Clean] removes empty columns, names blank headers
//     "Extra N", dedupes names, applies drop filters and removes empty rows
//  2. Rows are optionally sorted by a key column, empty cells last
//  3. [Normalizer.InferColumns] classifies each column as numeric, numeric
//     range ("40-52") or text
//
// Column behaviour is carried as flags on [ColumnDefinition]; rendering
// layers call [ColumnDefinition.Extract] and [ColumnDefinition.Format] rather
// than receiving code.
//
// # Error Handling
//
// Normalization never fails: malformed cells become the empty marker (nil).
// Loading failures are reported as [SourceError] values and mapped to
// user-facing messages by [MapError]:
//
//   - SRC001-SRC004: data source errors
//   - ROW001: row lookup errors
//   - REQ001-REQ002: request cancellation and timeouts
package core
