package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeDependencies() string {
	return `Builds the module import graph of a TypeScript/JavaScript project from relative imports and re-exports, then reports import cycles, fan rankings and edge-cut hints.

USE WHEN:
- Untangling circular imports before a refactor
- Finding the modules everything depends on
- Deciding which import to remove to break a cycle

INTERPRETING RESULTS:
- cycles: each path is closed (first element repeated at the end) and starts at its smallest module
- At most 100 elementary cycles are listed per strongly connected component
- fanInTop: modules imported by the most other modules (change carefully)
- fanOutTop: modules importing the most other modules (fragile)
- edgeCutHints: imports whose removal breaks the most cycles; score is the number of cycles through the edge

METRICS RETURNED:
- adjacency: module -> sorted imported modules
- exportStats: exported declarations and how many are abstract
- cycles, fanInTop, fanOutTop, edgeCutHints`
}

func describeCoupling() string {
	return `Scores modules with Robert Martin's package metrics: instability I = Ce/(Ca+Ce), abstractness A = abstract exports / exports, and distance from the main sequence D = |A + I - 1|.

USE WHEN:
- Looking for architectural hotspots
- Reviewing module boundaries
- Prioritizing decoupling work

INTERPRETING RESULTS:
- off-main-sequence: D above 0.7, the module is too concrete for its importers or too abstract for its users
- unstable-module: I above 0.8 with more than 5 imports
- rigid-module: I below 0.2 and imported by many modules
- god-module: both fan-in and fan-out are high
- bidirectional-coupling: two modules import each other
- score: 0-100, highest signal severity; hotspots are sorted by score

METRICS RETURNED:
- hotspots: module, score, signals, metrics, why, suggestedRefactor
- summary: hotspot count, signal counts, average instability and distance`
}

func describeDuplicates() string {
	return `Finds duplicated code by fingerprinting functions, methods, classes, blocks and type declarations.

USE WHEN:
- Finding copy-pasted code to extract into a shared helper
- Checking whether a refactor left duplicates behind

INTERPRETING RESULTS:
- mode exact: identical code including names and literal values
- mode shape: identical structure with identifiers renamed consistently; set normalize_literals to ignore literal values too
- min_size: candidates smaller than this many syntax nodes are ignored (default 20)
- Groups are sorted by size; each item has its file, span and a header naming the enclosing declaration

METRICS RETURNED:
- groups: fingerprint and items (kind, header, filePath, span, size)
- summary: group and item counts, duplicated nodes, occurrences per file`
}

func describeReport() string {
	return `Runs dependency, coupling and duplicate analysis in one pass over the same files.

USE WHEN:
- Getting an overview of a codebase's structure
- Producing a single report for a review

INTERPRETING RESULTS:
- excluded lists files left out because they could not be read or parsed
- Sections of detectors that were not requested are omitted

METRICS RETURNED:
- project, files, excluded, dependencies, coupling, duplicates`
}
