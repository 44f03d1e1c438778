package component

import (
	"github.com/matzehuels/qmetal/pkg/design"
	"github.com/matzehuels/qmetal/pkg/observability"
	"github.com/matzehuels/qmetal/pkg/options"
)

// RegisterTemplate stores the template for typeKey in d unless one is
// already stored. A non-empty explicit template is stored as given; a nil or
// empty one counts as absent and the type's options are resolved from the
// design's type catalog. Later
// calls, explicit or not, leave the stored template alone.
//
// The error reports a type that could not be resolved; nothing is stored
// in that case.
func RegisterTemplate(d *design.Design, typeKey string, explicit options.Options) error {
	if _, ok := d.Template(typeKey); ok {
		return nil
	}
	if len(explicit) > 0 {
		if d.SetTemplateIfAbsent(typeKey, explicit) {
			observability.Template().OnTemplateRegistered(typeKey, true)
		}
		return nil
	}

	resolved, err := d.Types().Resolve(typeKey)
	if err != nil {
		return err
	}
	if d.SetTemplateIfAbsent(typeKey, resolved) {
		observability.Template().OnTemplateRegistered(typeKey, false)
		d.Logger().Debug("template registered", "type", typeKey, "keys", len(resolved))
	}
	return nil
}

// TemplateOptions returns a copy of the template for typeKey, registering it
// first if needed. When no template can be registered the failure is logged
// and an empty mapping is returned, so the component is still created.
func TemplateOptions(d *design.Design, typeKey string, explicit options.Options) options.Options {
	regErr := RegisterTemplate(d, typeKey, explicit)
	t, ok := d.Template(typeKey)
	if !ok {
		observability.Template().OnTemplateMissing(typeKey)
		d.Logger().Error("no template for component type; using empty options", "type", typeKey, "err", regErr)
		return options.Options{}
	}
	return t
}
