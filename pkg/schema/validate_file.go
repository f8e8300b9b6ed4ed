package schema

import (
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	errUtils "github.com/strata-config/strata/errors"
)

// ValidateWithSchemaFile validates a document against a JSON Schema file on
// disk. This is the path external tooling uses: the schema may have been
// generated by JSONSchema or written by hand.
func ValidateWithSchemaFile(doc any, schemaPath, documentPath string) error {
	f, err := os.Open(schemaPath)
	if err != nil {
		return err
	}
	defer f.Close()

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaPath, f); err != nil {
		return err
	}

	compiled, err := compiler.Compile(schemaPath)
	if err != nil {
		return err
	}

	if err := compiled.Validate(doc); err != nil {
		violations, ok := collectViolations(err)
		if !ok {
			return err
		}
		return &errUtils.ValidationError{File: documentPath, Violations: violations}
	}
	return nil
}
