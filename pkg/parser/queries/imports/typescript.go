package imports

// TSQueries contains tree-sitter query patterns for TypeScript import
// statement extraction.
//
// Captures are regrouped per import_statement (and per import_specifier for
// name/alias/type association) by the analyzer.
//
// Captures:
//   - @import.source          - module specifier string
//   - @import.default         - default import local name
//   - @import.namespace       - namespace import local name
//   - @import.spec.*          - named specifiers { a, b as c, type D }
//   - @import.typemarker      - statement-level `import type`
const TSQueries = `
; ===========================================================================
; IMPORT STATEMENTS
; ===========================================================================

; Module specifier, common to all import forms
(import_statement
  source: (string (string_fragment) @import.source))

; import type { Foo } from './types': statement-level marker
(import_statement
  "type" @import.typemarker)

; Default import: import React from 'react';
(import_statement
  (import_clause
    (identifier) @import.default))

; Namespace import: import * as utils from './utils';
(import_statement
  (import_clause
    (namespace_import
      (identifier) @import.namespace)))

; ===========================================================================
; NAMED SPECIFIERS
; ===========================================================================

; import { foo, bar as b } from './utils';
(import_specifier
  name: (_) @import.spec.name)

(import_specifier
  alias: (_) @import.spec.alias)

; import { type Foo, bar } from './mod': per-specifier marker
(import_specifier
  "type" @import.spec.typemarker)
`
