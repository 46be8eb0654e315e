package plugin

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"

	rxerrors "github.com/routex-dev/routex/internal/errors"
)

// Spec is a plugin entry as written in configuration.
type Spec struct {
	Name    string         `config:"name" json:"name"`
	Kind    string         `config:"kind" json:"kind,omitempty"`
	Builtin bool           `config:"builtin" json:"builtin,omitempty"`
	Options map[string]any `config:"options" json:"options,omitempty"`
}

// Factory builds a subscriber from plugin options.
type Factory func(options map[string]any) (Subscriber, error)

// Catalog maps plugin names to their factories.
type Catalog map[string]Factory

// Names returns the catalog's plugin names, sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new catalog holding c's entries overlaid with o's.
func (c Catalog) Merge(o Catalog) Catalog {
	out := make(Catalog, len(c)+len(o))
	for name, f := range c {
		out[name] = f
	}
	for name, f := range o {
		out[name] = f
	}
	return out
}

// Resolve turns configured plugin entries into descriptors. An empty kind
// defaults to middleware. An unknown name or a failing factory aborts
// resolution with an E102 error.
func (c Catalog) Resolve(specs []Spec) ([]Descriptor, error) {
	descriptors := make([]Descriptor, 0, len(specs))
	for _, spec := range specs {
		factory, ok := c[spec.Name]
		if !ok {
			return nil, rxerrors.New("E102").
				WithDetail(fmt.Sprintf("no plugin named %q is registered", spec.Name)).
				WithFile(spec.Name)
		}

		sub, err := factory(spec.Options)
		if err != nil {
			return nil, rxerrors.New("E102").WithFile(spec.Name).Wrap(err)
		}

		kind := Kind(spec.Kind)
		if kind == "" {
			kind = KindMiddleware
		}

		descriptors = append(descriptors, Descriptor{
			Name:       spec.Name,
			Kind:       kind,
			Builtin:    spec.Builtin,
			Options:    spec.Options,
			Subscriber: sub,
		})
	}
	return descriptors, nil
}

// Decode decodes a plugin options map into target, which must be a
// pointer to a struct tagged with `option`. Strings are weakly converted,
// so "5s" decodes into a time.Duration, "true" into a bool and text into
// any encoding.TextUnmarshaler. Unknown keys are an error.
func Decode(options map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "option",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if options == nil {
		return nil
	}
	if err := decoder.Decode(options); err != nil {
		return fmt.Errorf("failed to decode plugin options: %w", err)
	}
	return nil
}
