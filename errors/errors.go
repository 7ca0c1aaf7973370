package errors

import (
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bound/constants"
)

var namespace = errorc.Namespace(constants.Namespace)

// Sentinel errors. Use errors.Is to match.
var (
	ErrNilObject             = namespace.NewError("nil object")
	ErrInvalidSubject        = namespace.NewError("only object binds are allowed; use Binding for property and pure value bindings")
	ErrAlreadyBound          = namespace.NewError("cannot rebind a bound object")
	ErrCircularReference     = namespace.NewError("possible circular dependency in object")
	ErrDuplicateSubscription = namespace.NewError("binding is already declared")
	ErrNotImplemented        = namespace.NewError("not implemented")
	ErrTypeMismatch          = namespace.NewError("value type does not match binding type")
	ErrShapeMismatch         = namespace.NewError("object shape does not match bound storage")
	ErrPathNotFound          = namespace.NewError("path not found")
	ErrInvalidConfig         = namespace.NewError("invalid configuration")
	ErrLiveProperty          = namespace.NewError("property is already live")
)

var newKey = errorc.KeyFactory(constants.ErrorFieldNamespace)

// Internal hierarchical segments used to build dotted keys.
const (
	keySegmentSubscriber = "subscriber"
	keySegmentValue      = "value"
	keySegmentConfig     = "config"
)

// Exported structured error field keys
var (
	ErrorFieldSubscriberKey  = newKey("key", keySegmentSubscriber)  // bound.subscriber.key
	ErrorFieldSubscriberRole = newKey("role", keySegmentSubscriber) // bound.subscriber.role
)

var (
	ErrorFieldValueType   = newKey("type", keySegmentValue)          // bound.value.type
	ErrorFieldBindingType = newKey("binding_type", keySegmentValue) // bound.value.binding_type
)

var (
	ErrorFieldConfigSource = newKey("source", keySegmentConfig) // bound.config.source
)

var (
	ErrorFieldPath     = newKey("path")
	ErrorFieldStrategy = newKey("strategy")
	ErrorFieldCause    = newKey("cause")
)
