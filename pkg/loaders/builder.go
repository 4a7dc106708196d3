package loaders

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/phase"
	"github.com/df07/go-phase-functions/pkg/volume"
)

var (
	// ErrUnknownType is returned for an unsupported phase or field type
	ErrUnknownType = errors.New("unknown type")
	// ErrUnknownReference is returned when ref names a missing entry
	ErrUnknownReference = errors.New("unknown reference")
	// ErrCycle is returned when entries reference each other in a loop
	ErrCycle = errors.New("reference cycle")
)

// DefaultWeight is the blend weight used when a description omits it
const DefaultWeight = 0.5

// builder resolves named descriptions, building each entry once so that
// references share the same instance
type builder struct {
	descriptions map[string]*Description
	built        map[string]phase.PhaseFunction
	failed       map[string]error
	resolving    []string
	logger       *zap.Logger
}

// Build builds every named entry of the file. Errors from independent
// entries are combined; the returned map holds the entries that succeeded.
func Build(file *File, logger *zap.Logger) (map[string]phase.PhaseFunction, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &builder{
		descriptions: file.Phases,
		built:        make(map[string]phase.PhaseFunction),
		failed:       make(map[string]error),
		logger:       logger,
	}

	names := make([]string, 0, len(file.Phases))
	for name := range file.Phases {
		names = append(names, name)
	}
	slices.Sort(names)

	var errs error
	for _, name := range names {
		if _, err := b.resolve(name); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("phase %q: %w", name, err))
		}
	}

	logger.Info("built phase functions",
		zap.Int("requested", len(names)),
		zap.Int("built", len(b.built)),
		zap.Int("failed", len(multierr.Errors(errs))))
	return b.built, errs
}

// LoadPhases loads a description file and builds all of its entries
func LoadPhases(filename string, logger *zap.Logger) (map[string]phase.PhaseFunction, error) {
	file, err := Load(filename)
	if err != nil {
		return nil, err
	}
	return Build(file, logger)
}

// resolve returns the phase function for a named entry
func (b *builder) resolve(name string) (phase.PhaseFunction, error) {
	if pf, ok := b.built[name]; ok {
		return pf, nil
	}
	if err, ok := b.failed[name]; ok {
		return nil, err
	}
	desc, ok := b.descriptions[name]
	if !ok || desc == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownReference)
	}
	if slices.Contains(b.resolving, name) {
		chain := append(slices.Clone(b.resolving), name)
		return nil, fmt.Errorf("%s: %w", strings.Join(chain, " -> "), ErrCycle)
	}

	b.resolving = append(b.resolving, name)
	pf, err := b.build(desc)
	b.resolving = b.resolving[:len(b.resolving)-1]

	if err != nil {
		b.failed[name] = err
		return nil, err
	}
	b.built[name] = pf
	b.logger.Debug("built phase function",
		zap.String("name", name),
		zap.String("phase", fmt.Sprint(pf)),
		zap.Int("components", pf.ComponentCount()),
		zap.Stringer("flags", pf.Flags()))
	return pf, nil
}

// build creates the phase function for a single description
func (b *builder) build(desc *Description) (phase.PhaseFunction, error) {
	if desc.Ref != "" {
		if desc.Type != "" {
			return nil, fmt.Errorf("ref %q cannot be combined with type %q: %w", desc.Ref, desc.Type, phase.ErrInvalidConfig)
		}
		return b.resolve(desc.Ref)
	}

	switch desc.Type {
	case "hg":
		g := phase.DefaultG
		if desc.G != nil {
			g = *desc.G
		}
		return phase.NewHenyeyGreenstein(g)
	case "isotropic":
		return phase.NewIsotropic(), nil
	case "rayleigh":
		return phase.NewRayleigh(), nil
	case "blend":
		return b.buildBlend(desc)
	case "":
		return nil, fmt.Errorf("missing type: %w", phase.ErrInvalidConfig)
	default:
		return nil, fmt.Errorf("phase type %q: %w", desc.Type, ErrUnknownType)
	}
}

func (b *builder) buildBlend(desc *Description) (phase.PhaseFunction, error) {
	var children []*Description
	if desc.Phase0 != nil {
		children = append(children, desc.Phase0)
	}
	if desc.Phase1 != nil {
		children = append(children, desc.Phase1)
	}
	children = append(children, desc.Phases...)

	if len(children) != 2 {
		return nil, fmt.Errorf("blend: exactly two nested phase functions are required, got %d: %w", len(children), phase.ErrInvalidConfig)
	}

	phases := make([]phase.PhaseFunction, len(children))
	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("blend: phase_%d is empty: %w", i, phase.ErrInvalidConfig)
		}
		pf, err := b.build(child)
		if err != nil {
			return nil, fmt.Errorf("phase_%d: %w", i, err)
		}
		phases[i] = pf
	}

	weight, err := buildField(desc.Weight)
	if err != nil {
		return nil, fmt.Errorf("weight: %w", err)
	}
	return phase.NewBlend(weight, phases...)
}

// buildField creates a scalar field; a missing description yields the
// default constant weight
func buildField(desc *FieldDescription) (volume.Field, error) {
	if desc == nil {
		return volume.NewConstant(DefaultWeight), nil
	}

	switch desc.Type {
	case "constant":
		return volume.NewConstant(desc.Value), nil
	case "gradient":
		axis, err := parseAxis(desc.Axis)
		if err != nil {
			return nil, err
		}
		return volume.NewGradient(axis, desc.Start, desc.End, desc.From, desc.To)
	case "grid":
		bounds := core.NewAABB(
			core.NewVec3(desc.Min[0], desc.Min[1], desc.Min[2]),
			core.NewVec3(desc.Max[0], desc.Max[1], desc.Max[2]),
		)
		return volume.NewGrid(bounds, desc.Resolution, desc.Data)
	default:
		return nil, fmt.Errorf("field type %q: %w", desc.Type, ErrUnknownType)
	}
}

func parseAxis(axis string) (int, error) {
	switch strings.ToLower(axis) {
	case "x":
		return 0, nil
	case "y", "":
		return 1, nil
	case "z":
		return 2, nil
	default:
		return 0, fmt.Errorf("gradient axis must be x, y or z, got %q: %w", axis, phase.ErrInvalidConfig)
	}
}
