package builtin

import "context"

// deontic is reserved for normative aspects. It accepts any arguments, has
// no side effects and is never satisfied.
func (l *Library) deontic(context.Context, *invocation) (bool, error) {
	return false, nil
}

// nest is reserved for nested aspects. It accepts any arguments, has no side
// effects and is never satisfied.
func (l *Library) nest(context.Context, *invocation) (bool, error) {
	return false, nil
}
