package expiration

import (
	"fmt"
	"time"
)

// Spec es la forma serializable de un árbol de políticas, usada por los
// backends del registry para persistir tickets fuera de proceso.
type Spec struct {
	Kind        string        `json:"kind"`
	TTL         time.Duration `json:"ttl,omitempty"`
	Window      time.Duration `json:"window,omitempty"`
	MinInterval time.Duration `json:"min_interval,omitempty"`
	MaxUses     int           `json:"max_uses,omitempty"`
	Children    []Spec        `json:"children,omitempty"`
}

const (
	kindNever     = "never"
	kindTimeout   = "timeout"
	kindIdle      = "idle"
	kindThrottled = "throttled"
	kindUses      = "uses"
	kindAny       = "any"
	kindAll       = "all"
)

// Build reconstruye la política descrita por el spec.
func (s Spec) Build() (Policy, error) {
	switch s.Kind {
	case kindNever, "":
		return Never{}, nil
	case kindTimeout:
		return Timeout{TTL: s.TTL}, nil
	case kindIdle:
		return Idle{Window: s.Window}, nil
	case kindThrottled:
		return Throttled{MinInterval: s.MinInterval}, nil
	case kindUses:
		return Uses{Max: s.MaxUses}, nil
	case kindAny, kindAll:
		children := make([]Policy, 0, len(s.Children))
		for _, c := range s.Children {
			p, err := c.Build()
			if err != nil {
				return nil, err
			}
			children = append(children, p)
		}
		if s.Kind == kindAny {
			return AnyOf(children), nil
		}
		return AllOf(children), nil
	default:
		return nil, fmt.Errorf("expiration: unknown policy kind %q", s.Kind)
	}
}

// SpecOf produce el spec serializable de una política construida con los
// tipos de este paquete. Retorna error para políticas externas desconocidas.
func SpecOf(p Policy) (Spec, error) {
	switch v := p.(type) {
	case nil:
		return Spec{Kind: kindNever}, nil
	case Never:
		return Spec{Kind: kindNever}, nil
	case Timeout:
		return Spec{Kind: kindTimeout, TTL: v.TTL}, nil
	case Idle:
		return Spec{Kind: kindIdle, Window: v.Window}, nil
	case Throttled:
		return Spec{Kind: kindThrottled, MinInterval: v.MinInterval}, nil
	case Uses:
		return Spec{Kind: kindUses, MaxUses: v.Max}, nil
	case AnyOf:
		return specOfComposite(kindAny, v)
	case AllOf:
		return specOfComposite(kindAll, v)
	default:
		return Spec{}, fmt.Errorf("expiration: cannot serialize policy %T", p)
	}
}

func specOfComposite(kind string, children []Policy) (Spec, error) {
	out := Spec{Kind: kind, Children: make([]Spec, 0, len(children))}
	for _, c := range children {
		cs, err := SpecOf(c)
		if err != nil {
			return Spec{}, err
		}
		out.Children = append(out.Children, cs)
	}
	return out, nil
}
