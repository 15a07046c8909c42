package collection

import (
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

// Patch is a typed partial update. Validate runs before the store is touched;
// Apply must be pure and must not change the entity ID.
type Patch[E any] interface {
	Validate() error
	Apply(E) E
}

// PatchFunc adapts a plain function into an always-valid Patch.
type PatchFunc[E any] func(E) E

// Validate rejects a nil function.
func (f PatchFunc[E]) Validate() error {
	if f == nil {
		return apperrors.E(apperrors.KindValidation, "patch function is required")
	}
	return nil
}

// Apply calls f.
func (f PatchFunc[E]) Apply(entity E) E {
	return f(entity)
}

func validatePatch[E any](patch Patch[E]) error {
	if patch == nil {
		return apperrors.E(apperrors.KindValidation, "patch is required")
	}
	if err := patch.Validate(); err != nil {
		if apperrors.KindOf(err) == apperrors.KindValidation {
			return err
		}
		return apperrors.Wrap(apperrors.KindValidation, "invalid patch", err)
	}
	return nil
}
