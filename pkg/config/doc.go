/*
Package config parses and validates transaction plans.

	            +-------------+
	            |    Plan     |
	            |(trash+steps)|
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   YAML    |           |   HCL   |
	| Parser    |           | Parser  |
	+-----------+           +---------+

🎯 Purpose:
- Describe a transaction declaratively: ordered copy steps plus the trash area
- Parse plans from HCL (default) or YAML, chosen by file extension
- Validate names, required paths, and glob patterns before anything runs
- Materialize step requests with defaults applied

🔄 Flow:
1. Load reads the plan file and picks a registered parser by extension
2. The parser decodes format-specific syntax into the shared Plan model
3. Validate rejects duplicate step names, missing paths, and bad patterns
4. StepConfig.Request() hands each step to the runner with defaults filled

📝 Design Philosophy:
Plans are data, not code: everything the runner needs to check and apply a
transaction lives in one file that can be reviewed before it runs. Parsers
self-register the way they would for any other pluggable format, and strict
decoding (unknown YAML fields are errors) keeps typos from silently becoming
no-ops.

🔍 Example:

	plan, err := config.Load(ctx, ".copytx.hcl")
	if err != nil {
		return err
	}
	for _, s := range plan.Steps {
		req := s.Request()
		req.Phase = step.PhaseCheck
		// hand req to the copy step
	}
*/
package config
