// Package library loads, caches and saves mission plans from a directory.
//
// Plan Files:
//
// A plans directory holds one file per plan. The file name without its
// extension is the plan ID used by the CLI, the HTTP API and the MCP tools.
// Supported formats, in lookup order:
//   - .yaml / .yml: structured plan (name, description, terrain, rovers)
//   - .json: same schema as YAML
//   - .txt: raw instruction lines, the format of roverCommands.txt
//
// When the same ID exists in several formats the first extension in lookup
// order wins.
//
// Default Plan:
//
// The default plan is "classic" when present, otherwise the first valid plan
// in the directory, otherwise the built-in two-rover mission.
//
// Usage:
//
//	plans, err := library.NewManager("plans")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	p, err := plans.LoadPlan("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	lines := p.Lines()
//
// Saved plans are always written as YAML.
package library
