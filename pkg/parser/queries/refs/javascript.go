package refs

// JSQueries mirrors TSQueries for the JavaScript grammar. JavaScript has
// no type positions, so every occurrence is a value occurrence.
const JSQueries = `
[
  (identifier)
  (shorthand_property_identifier)
] @ref.name
`
