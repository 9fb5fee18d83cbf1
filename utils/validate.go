package utils

import "github.com/go-playground/validator/v10"

// Validate is the shared request validator. Request structs carry
// `validate` tags and are checked through this instance before use.
var Validate = validator.New()
