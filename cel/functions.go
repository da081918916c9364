package cel

import (
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// lowerFunction declares lower(string) -> string, using strings.ToLower so
// that case folding matches the native evaluator for non-ASCII text.
func lowerFunction() celgo.EnvOption {
	return celgo.Function("lower",
		celgo.Overload("lower_string",
			[]*celgo.Type{celgo.StringType},
			celgo.StringType,
			celgo.UnaryBinding(lower)))
}

func lower(v ref.Val) ref.Val {
	s, ok := v.(types.String)
	if !ok {
		return types.MaybeNoSuchOverloadErr(v)
	}
	return types.String(strings.ToLower(string(s)))
}
