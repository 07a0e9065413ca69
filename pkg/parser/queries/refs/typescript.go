package refs

// TSQueries captures every identifier occurrence relevant to usage
// classification.
//
// The classifier filters captures down to the file's imported local names
// and decides type vs value position from the node kind: the TypeScript
// grammar parses identifiers in type positions (annotations, generic
// arguments, interface extends clauses, as-casts) as type_identifier, and
// identifiers in expression positions (calls, JSX tags, member access,
// spreads) as identifier.
const TSQueries = `
[
  (identifier)
  (type_identifier)
  (shorthand_property_identifier)
] @ref.name
`
