package exports

// JSQueries mirrors TSQueries for the JavaScript grammar.
//
// JavaScript has no interfaces, type aliases, enums, or type markers, so
// every named export is value-bearing and the type-only patterns are
// absent. Class names are plain identifiers in this grammar.
const JSQueries = `
; ===========================================================================
; NAMED DECLARATION EXPORTS
; ===========================================================================

(export_statement
  declaration: (function_declaration
    name: (identifier) @export.value.name))

(export_statement
  declaration: (generator_function_declaration
    name: (identifier) @export.value.name))

(export_statement
  declaration: (class_declaration
    name: (identifier) @export.value.name))

(export_statement
  declaration: (lexical_declaration
    (variable_declarator
      name: (identifier) @export.value.name)))

(export_statement
  declaration: (variable_declaration
    (variable_declarator
      name: (identifier) @export.value.name)))

; ===========================================================================
; DEFAULT EXPORTS
; ===========================================================================

(export_statement
  "default" @export.default.marker)

(export_statement
  value: (identifier) @export.default.identifier)

; ===========================================================================
; EXPORT CLAUSES AND RE-EXPORTS
; ===========================================================================

(export_specifier
  name: (_) @export.spec.name)

(export_specifier
  alias: (_) @export.spec.alias)

(export_statement
  source: (string (string_fragment) @export.source))

(export_statement
  (namespace_export
    (identifier) @export.namespace))
`
