package ir

import "fmt"

// XSD datatype IRIs used by the built-ins.
const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	XSDBoolean   = XSDNamespace + "boolean"
	XSDString    = XSDNamespace + "string"
)

// BooleanLiteral builds an xsd:boolean literal.
func BooleanLiteral(b bool) Literal {
	if b {
		return Literal{Lexical: "true", Datatype: XSDBoolean}
	}
	return Literal{Lexical: "false", Datatype: XSDBoolean}
}

// ParseXSDBoolean parses the xsd:boolean lexical space: true, false, 1, 0.
// Unlike strconv.ParseBool it rejects "T", "TRUE" and friends.
func ParseXSDBoolean(lexical string) (bool, error) {
	switch lexical {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a valid xsd:boolean", lexical)
}
