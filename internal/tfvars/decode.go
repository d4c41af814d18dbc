// Package tfvars reads and writes deployment variable files in Terraform
// variable-definitions syntax. Only literal values are accepted: a variable
// file defines values, it does not compute them.
package tfvars

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	apperrors "github.com/cancianpiero/deployvars/internal/errors"
	"github.com/cancianpiero/deployvars/internal/vars"
)

// DecodeFile reads and decodes the variable file at path, applying defaults
// for omitted keys.
func DecodeFile(path string) (*vars.Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(src, path)
}

// Decode parses src as a variable file. filename is used in diagnostics only.
func Decode(src []byte, filename string) (*vars.Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to parse %s: unexpected body type", filename)
	}
	if len(body.Blocks) > 0 {
		rng := body.Blocks[0].DefRange()
		return nil, fmt.Errorf("%s: blocks are not allowed in a variable file", rng)
	}

	// hclsyntax exposes attributes as a map; restore source order so errors
	// come out deterministically.
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})

	config := &vars.Config{}
	var errs []error
	for _, attr := range attrs {
		spec := vars.Lookup(attr.Name)
		if spec == nil {
			errs = append(errs, fmt.Errorf("%s: %w: %s", attr.SrcRange, apperrors.ErrUnknownKey, attr.Name))
			continue
		}

		val, valDiags := attr.Expr.Value(nil)
		if valDiags.HasErrors() {
			errs = append(errs, fmt.Errorf("failed to evaluate %s: %w", attr.Name, valDiags))
			continue
		}
		if err := assign(config, spec, val, attr.SrcRange); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	config.ApplyDefaults()
	return config, nil
}

func assign(config *vars.Config, spec *vars.KeySpec, val cty.Value, rng hcl.Range) error {
	if val.IsNull() {
		return fmt.Errorf("%s: %w: %s is null", rng, apperrors.ErrWrongType, spec.Name)
	}
	switch spec.Kind {
	case vars.KindBool:
		if val.Type() != cty.Bool {
			return fmt.Errorf("%s: %w: %s wants bool, got %s", rng, apperrors.ErrWrongType, spec.Name, val.Type().FriendlyName())
		}
		spec.SetBool(config, val.True())
	default:
		if val.Type() != cty.String {
			return fmt.Errorf("%s: %w: %s wants string, got %s", rng, apperrors.ErrWrongType, spec.Name, val.Type().FriendlyName())
		}
		spec.SetString(config, val.AsString())
	}
	return nil
}
