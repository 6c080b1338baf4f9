package intercept

// AliasPrefix marks the alias-table entry that holds a wrapped original.
const AliasPrefix = "__intercepted_"

// AliasName derives the alias-table key for the original of name. Distinct
// names always map to distinct aliases.
func AliasName(name string) string {
	return AliasPrefix + name
}
