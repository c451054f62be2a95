package dependencies

import (
	"fmt"

	"github.com/ekaya-inc/ekaya-export/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-export/pkg/models"
)

// Resolver rewrites the dependency references of flows.
type Resolver struct {
	mappings Map
}

// NewResolver creates a resolver over m.
func NewResolver(m Map) *Resolver {
	if m == nil {
		m = Map{}
	}
	return &Resolver{mappings: m}
}

// Resolve replaces every entry of lexica.cognigy and attachedFlows.cognigy with
// its mapped value, in place and in order. It returns a
// *apperrors.MissingDependencyError for the first name without a mapping; the
// caller must stop the whole export on it, since an unmapped reference breaks
// the target system after import. Resources with neither array are untouched.
func (r *Resolver) Resolve(res *models.Resource) error {
	if refs, ok := res.Lexica(); ok {
		if err := r.rewrite(refs, apperrors.DependencyLexicon, res); err != nil {
			return err
		}
	}
	if refs, ok := res.AttachedFlows(); ok {
		if err := r.rewrite(refs, apperrors.DependencyAttachedFlow, res); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) rewrite(refs models.DependencyRefs, kind apperrors.DependencyKind, res *models.Resource) error {
	for i := 0; i < refs.Len(); i++ {
		name, ok := refs.Name(i)
		if !ok {
			return &apperrors.MissingDependencyError{Kind: kind, Name: fmt.Sprint(refs.Raw(i)), ResourceID: res.ID.String()}
		}
		mapped, ok := r.mappings.Lookup(name)
		if !ok {
			return &apperrors.MissingDependencyError{Kind: kind, Name: name, ResourceID: res.ID.String()}
		}
		refs.Set(i, mapped)
	}
	return nil
}
