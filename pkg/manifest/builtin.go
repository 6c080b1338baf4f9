package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/jingkaihe/interpose/pkg/member"
)

// Transform rewrites the string produced by a member's block.
type Transform string

const (
	TransformUpcase   Transform = "upcase"
	TransformDowncase Transform = "downcase"
	TransformReverse  Transform = "reverse"
	TransformTrim     Transform = "trim"
)

// YieldPlaceholder is replaced in a template by the block's result.
const YieldPlaceholder = "{{yield}}"

func (t Transform) valid() bool {
	_, ok := transforms[t]
	return ok
}

var transforms = map[Transform]func(string) string{
	TransformUpcase:   strings.ToUpper,
	TransformDowncase: strings.ToLower,
	TransformReverse:  reverse,
	TransformTrim:     strings.TrimSpace,
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// Method builds the member implementation d describes.
func (d *Def) Method() member.Method {
	switch {
	case d.Return != nil:
		v := *d.Return
		return func(ctx context.Context, call member.Call) (any, error) { return v, nil }

	case d.Transform != "":
		fn := transforms[d.Transform]
		return func(ctx context.Context, call member.Call) (any, error) {
			v, err := call.Yield(ctx)
			if err != nil {
				return nil, err
			}
			return fn(fmt.Sprint(v)), nil
		}

	case d.Template != "":
		tpl := d.Template
		return func(ctx context.Context, call member.Call) (any, error) {
			if !strings.Contains(tpl, YieldPlaceholder) {
				return tpl, nil
			}
			v, err := call.Yield(ctx)
			if err != nil {
				return nil, err
			}
			return strings.ReplaceAll(tpl, YieldPlaceholder, fmt.Sprint(v)), nil
		}

	default:
		return func(ctx context.Context, call member.Call) (any, error) {
			parts := make([]string, len(call.Args))
			for i, a := range call.Args {
				parts[i] = fmt.Sprint(a)
			}
			return strings.Join(parts, " "), nil
		}
	}
}
