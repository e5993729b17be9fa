/*
Package config loads docscrub settings from YAML, HCL, JSON or TOML.

	            +-------------+
	            |   Config    |
	            +------+------+
	                   |
	   +--------+------+------+--------+
	   |        |             |        |
	+--+---+ +--+--+      +---+--+ +---+--+
	| YAML | | HCL |      | JSON | | TOML |
	+------+ +-----+      +------+ +------+

🎯 Sections:
  - normalize: comma_policy (remove_space_before, insert_space_after)
  - correction: provider, endpoint, language, timeout, concurrency, api_key_env, deployment
  - limits: max_bytes, extensions
  - quota: daily_limit, store
  - targets: extra_patterns

🔄 Flow:
 1. Load picks a parser by file extension (a .docscrub file is tried as YAML, then HCL)
 2. The parser rejects unknown keys
 3. Validate fills defaults and rejects bad values

Every section is optional. An empty YAML file yields the same config as Default.

🔍 Example:

	cfg, err := config.Load(ctx, "docscrub.yaml")
	if err != nil {
		return err
	}
	c, err := correction.New(ctx, cfg.CorrectionOptions())
*/
package config
