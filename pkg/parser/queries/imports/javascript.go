package imports

// JSQueries mirrors TSQueries for the JavaScript grammar, which has no
// type-only import syntax.
const JSQueries = `
; ===========================================================================
; IMPORT STATEMENTS
; ===========================================================================

(import_statement
  source: (string (string_fragment) @import.source))

(import_statement
  (import_clause
    (identifier) @import.default))

(import_statement
  (import_clause
    (namespace_import
      (identifier) @import.namespace)))

; ===========================================================================
; NAMED SPECIFIERS
; ===========================================================================

(import_specifier
  name: (_) @import.spec.name)

(import_specifier
  alias: (_) @import.spec.alias)
`
