package model

import (
	"errors"

	"github.com/xh3b4sd/tracer"
)

var invalidArgumentError = &tracer.Error{
	Kind: "invalidArgumentError",
}

// IsInvalidArgument checks for malformed training inputs, e.g. mismatched
// feature/label lengths, fewer than two labels, or a non-positive iteration
// budget.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, invalidArgumentError)
}

var domainError = &tracer.Error{
	Kind: "domainError",
	Desc: "The weak learner is degenerate relative to the current instance weights, so no finite confidence weight exists. Retrying internally would require a different weak learner, which is the caller's decision.",
}

// IsDomain checks for degenerate weighted error rates during boosting: a
// weighted error of exactly 0 on a non-first iteration, or exactly 1 on any
// iteration, leaves the confidence weight undefined.
func IsDomain(err error) bool {
	return errors.Is(err, domainError)
}

var notRegisteredError = &tracer.Error{
	Kind: "notRegisteredError",
}

// IsNotRegistered checks whether an ensemble blob references a weak
// classifier kind that has no decoder registered.
func IsNotRegistered(err error) bool {
	return errors.Is(err, notRegisteredError)
}
