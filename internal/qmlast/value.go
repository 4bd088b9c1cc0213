package qmlast

import (
	"strings"

	"github.com/asivery/qmldiff/internal/qmltoken"
)

// StrValue returns the flattened source text of a child's scalar value, for
// the ObjectChild kinds that have one, mirroring the original's
// TranslatedObjectChild::get_str_value. Object-valued children (object
// properties, object assignments, nested objects, enums, functions,
// signals, components) have no scalar value and return ("", false).
func StrValue(c ObjectChild) (string, bool) {
	switch t := c.(type) {
	case *AssignmentChild:
		return flattenTokens(t.Value), true
	case *PropertyChild:
		if !t.HasDefault {
			return "", false
		}
		return flattenTokens(t.DefaultValue), true
	default:
		return "", false
	}
}

func flattenTokens(toks []qmltoken.Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}
