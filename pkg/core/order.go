package core

import "sort"

// Order topologically sorts a submitted resource set so that every resource
// referenced by another appears earlier than its referrer. Resources with no
// ordering constraint between them sort by (kind rank, name), which makes the
// plan deterministic regardless of the input enumeration order.
//
// The reference schema cannot produce cycles in practice, but Order still
// rejects them with a CycleError instead of assuming that.
func Order(specs []ResourceSpec) (ReconciliationPlan, error) {
	sorted := append([]ResourceSpec(nil), specs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		left, right := sorted[i], sorted[j]
		if KindRank(left.Kind) != KindRank(right.Kind) {
			return KindRank(left.Kind) < KindRank(right.Kind)
		}
		return left.Name < right.Name
	})

	byID := make(map[ResourceID]ResourceSpec, len(sorted))
	for _, spec := range sorted {
		byID[spec.ID()] = spec
	}

	const (
		unvisited = iota
		inProgress
		done
	)

	colors := make(map[ResourceID]int, len(sorted))
	ordered := make([]ResourceSpec, 0, len(sorted))

	var visit func(spec ResourceSpec, trail []string) error
	visit = func(spec ResourceSpec, trail []string) error {
		id := spec.ID()
		switch colors[id] {
		case done:
			return nil
		case inProgress:
			return &CycleError{Members: append(trail, id.String())}
		}

		colors[id] = inProgress

		deps := dependencies(spec, byID)
		for _, dep := range deps {
			if err := visit(dep, append(trail, id.String())); err != nil {
				return err
			}
		}

		colors[id] = done
		ordered = append(ordered, spec)
		return nil
	}

	for _, spec := range sorted {
		if err := visit(spec, nil); err != nil {
			return ReconciliationPlan{}, err
		}
	}

	return ReconciliationPlan{Resources: ordered}, nil
}

// dependencies resolves a spec's references against the submitted set,
// returning the referenced specs in deterministic (kind rank, name) order.
// References to resources outside the set are skipped; validation reports
// those before ordering runs.
func dependencies(spec ResourceSpec, byID map[ResourceID]ResourceSpec) []ResourceSpec {
	seen := map[ResourceID]struct{}{}
	var deps []ResourceSpec

	for _, ref := range spec.References() {
		id := ResourceID{Kind: ref.Kind, Name: ref.Name}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if dep, exists := byID[id]; exists {
			deps = append(deps, dep)
		}
	}

	sort.SliceStable(deps, func(i, j int) bool {
		left, right := deps[i], deps[j]
		if KindRank(left.Kind) != KindRank(right.Kind) {
			return KindRank(left.Kind) < KindRank(right.Kind)
		}
		return left.Name < right.Name
	})

	return deps
}
