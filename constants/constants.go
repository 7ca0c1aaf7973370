package constants

const Namespace = "bound"

// ErrorFieldNamespace for all exported error field keys.
const ErrorFieldNamespace = Namespace

// TagName is the struct tag consulted when snapshotting structs.
const TagName = "bound"

// PathSeparator joins keys into dotted paths (e.g. inside.another).
const PathSeparator = "."
