package exports

// TSQueries contains tree-sitter query patterns for TypeScript export
// surface extraction.
//
// Every pattern is anchored on export_statement (or export_specifier, whose
// captures are regrouped per statement by the analyzer). Value-bearing and
// type-only declarations capture under distinct names so the analyzer can
// assign an export kind without re-inspecting the declaration node.
//
// Captures:
//   - @export.value.name     - named export of a runtime binding
//   - @export.type.name      - named export of a type-level construct
//   - @export.default.*      - default export marker and value identifier
//   - @export.spec.*         - export clause specifiers { a, b as c }
//   - @export.typemarker     - statement-level `export type { ... }`
//   - @export.source         - re-export module specifier
//   - @export.namespace      - `export * as ns from ...` alias
const TSQueries = `
; ===========================================================================
; NAMED DECLARATION EXPORTS (value-bearing)
; ===========================================================================

; export function foo() {}
(export_statement
  declaration: (function_declaration
    name: (identifier) @export.value.name))

; export function* gen() {}
(export_statement
  declaration: (generator_function_declaration
    name: (identifier) @export.value.name))

; export class MyClass {}
(export_statement
  declaration: (class_declaration
    name: (type_identifier) @export.value.name))

; export abstract class Base {}
(export_statement
  declaration: (abstract_class_declaration
    name: (type_identifier) @export.value.name))

; export const foo = 1; / export let / export var
(export_statement
  declaration: (lexical_declaration
    (variable_declarator
      name: (identifier) @export.value.name)))

(export_statement
  declaration: (variable_declaration
    (variable_declarator
      name: (identifier) @export.value.name)))

; export enum Color {} (enums carry runtime objects)
(export_statement
  declaration: (enum_declaration
    name: (identifier) @export.value.name))

; ===========================================================================
; NAMED DECLARATION EXPORTS (type-only)
; ===========================================================================

; export interface User {}
(export_statement
  declaration: (interface_declaration
    name: (type_identifier) @export.type.name))

; export type ID = string;
(export_statement
  declaration: (type_alias_declaration
    name: (type_identifier) @export.type.name))

; ===========================================================================
; DEFAULT EXPORTS
; ===========================================================================

; export default <anything>; the marker identifies the statement, the
; identifier capture (when present) names the exported binding.
(export_statement
  "default" @export.default.marker)

(export_statement
  value: (identifier) @export.default.identifier)

; ===========================================================================
; EXPORT CLAUSES AND RE-EXPORTS
; ===========================================================================

; export { foo, bar as baz }; / export { foo } from './mod';
(export_specifier
  name: (_) @export.spec.name)

(export_specifier
  alias: (_) @export.spec.alias)

; export { type Foo }: per-specifier type marker
(export_specifier
  "type" @export.spec.typemarker)

; export type { Foo, Bar }: statement-level type marker
(export_statement
  "type" @export.typemarker)

; export * from './mod'; / export { x } from './mod';
(export_statement
  source: (string (string_fragment) @export.source))

; export * as ns from './mod';
(export_statement
  (namespace_export
    (identifier) @export.namespace))
`
