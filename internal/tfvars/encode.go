package tfvars

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/cancianpiero/deployvars/internal/vars"
)

// Encode renders config in canonical form: registry order, keys grouped by
// section with a blank line between sections, aligned assignments. Optional
// string keys that are unset are omitted.
func Encode(config *vars.Config) []byte {
	file := hclwrite.NewEmptyFile()
	body := file.Body()

	lastSection := ""
	wrote := false
	for i := range vars.Registry {
		spec := &vars.Registry[i]
		if spec.Kind == vars.KindString && !spec.Required && spec.IsZero(config) {
			continue
		}
		if wrote && spec.Section != lastSection {
			body.AppendNewline()
		}
		lastSection = spec.Section
		wrote = true

		switch spec.Kind {
		case vars.KindBool:
			body.SetAttributeValue(spec.Name, cty.BoolVal(spec.BoolValue(config)))
		default:
			body.SetAttributeValue(spec.Name, cty.StringVal(spec.StringValue(config)))
		}
	}

	return hclwrite.Format(file.Bytes())
}
