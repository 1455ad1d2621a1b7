// Package spread decides which records reference which FASTA entries.
//
// A policy receives the record count and, per FASTA file, the number of
// entries it holds, and returns one Ref per record. Policies register by
// name so the CLI can select them with --policy.
package spread

import (
	"sort"

	"tsvgen/internal/errs"
)

// Ref points at entry Entry of FASTA file File. File < 0 means no reference.
type Ref struct {
	File  int
	Entry int
}

// None is the zero reference.
var None = Ref{File: -1, Entry: -1}

// Valid reports whether r points at a file.
func (r Ref) Valid() bool { return r.File >= 0 }

// Plan holds one Ref per record.
type Plan []Ref

// Referenced counts records with a valid Ref.
func (p Plan) Referenced() int {
	n := 0
	for _, r := range p {
		if r.Valid() {
			n++
		}
	}
	return n
}

// FilesUsed returns the distinct file indices referenced, ascending.
func (p Plan) FilesUsed() []int {
	seen := map[int]struct{}{}
	for _, r := range p {
		if r.Valid() {
			seen[r.File] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Ints(out)
	return out
}

// Policy builds a plan for count records over files, where entries[k] is
// the number of entries in file k. Callers guarantee len(entries) <= count
// and every entries[k] > 0.
type Policy func(count int, entries []int) Plan

// Policy names.
const (
	PolicyEven  = "even"
	PolicyCycle = "cycle"
)

// DefaultPolicy is used when none is named.
const DefaultPolicy = PolicyEven

var policies = map[string]Policy{}

func init() {
	Register(PolicyEven, Even)
	Register(PolicyCycle, Cycle)
}

// Register adds or replaces a named policy (last wins).
func Register(name string, p Policy) { policies[name] = p }

// Lookup returns the named policy.
func Lookup(name string) (Policy, error) {
	p, ok := policies[name]
	if !ok {
		return nil, errs.Configf("unknown --policy %q (want one of %v)", name, Names())
	}
	return p, nil
}

// Names lists registered policies.
func Names() []string {
	out := make([]string, 0, len(policies))
	for n := range policies {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func empty(count int) Plan {
	p := make(Plan, count)
	for i := range p {
		p[i] = None
	}
	return p
}

// EvenIndices returns spread record indices spaced evenly over [0, count).
// The result is strictly increasing and starts at 0.
func EvenIndices(count, spread int) []int {
	if spread <= 0 || count <= 0 {
		return nil
	}
	out := make([]int, spread)
	for k := range out {
		out[k] = k * count / spread
	}
	return out
}

// Even gives file k to the k-th evenly spaced record, using its first
// entry. Exactly len(entries) records carry a reference.
func Even(count int, entries []int) Plan {
	p := empty(count)
	for k, i := range EvenIndices(count, len(entries)) {
		p[i] = Ref{File: k, Entry: 0}
	}
	return p
}

// Cycle interleaves entries across files (entry 0 of every file, then entry
// 1, ...) and hands them to every record round-robin.
func Cycle(count int, entries []int) Plan {
	p := empty(count)
	var order []Ref
	longest := 0
	for _, n := range entries {
		longest = max(longest, n)
	}
	for e := 0; e < longest; e++ {
		for f, n := range entries {
			if e < n {
				order = append(order, Ref{File: f, Entry: e})
			}
		}
	}
	if len(order) == 0 {
		return p
	}
	for i := range p {
		p[i] = order[i%len(order)]
	}
	return p
}
