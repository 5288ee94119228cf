package graph

// FindUnused returns the members of universe that nothing still in use
// references, in the order they were found.
//
// A module is used while some module of the live graph lists it as a
// dependency. Unused modules leave the live graph, which can expose the
// modules only they referenced, so passes repeat until one finds nothing
// new. The entry module is never unused, even when nothing references it.
// Modules without a graph entry could not be loaded; they are missing, not
// unused. Modules kept alive only by each other, such as an orphaned cycle
// or a module referencing itself, stay used.
func FindUnused(universe []string, g Graph, entry string) []string {
	refs := make(map[string]int)
	for _, deps := range g {
		for _, dep := range deps {
			refs[dep]++
		}
	}

	removed := make(map[string]bool)
	unused := make([]string, 0)
	for changed := true; changed; {
		changed = false
		for _, module := range universe {
			if module == entry || removed[module] || refs[module] > 0 {
				continue
			}
			deps, ok := g[module]
			if !ok {
				continue
			}

			removed[module] = true
			unused = append(unused, module)
			changed = true
			for _, dep := range deps {
				refs[dep]--
			}
		}
	}
	return unused
}
